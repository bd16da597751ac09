package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the lock core.
// Use these keys consistently across all log statements for log aggregation
// and querying.
const (
	// ========================================================================
	// Context Propagation
	// ========================================================================
	KeyTraceID = "trace_id" // Correlation ID carried on a LogContext, for multi-log request tracing
	KeySpanID  = "span_id"  // Sub-operation ID carried on a LogContext

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyOperation  = "operation"   // Operation name: acquire, release, check_access, destroy_by_handle
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Named error code
	KeyAttempt    = "attempt"     // Retry/requeue attempt number

	// ========================================================================
	// Identity
	// ========================================================================
	KeyHandle    = "handle"     // File handle
	KeySessionID = "session_id" // Session identifier
	KeyRequestID = "request_id" // Request/process identifier
	KeyUID       = "uid"        // User ID

	// ========================================================================
	// Locking
	// ========================================================================
	KeyLockType   = "lock_type"   // Lock type: shared, exclusive
	KeyLockOffset = "lock_offset" // Lock range start
	KeyLockLength = "lock_length" // Lock range length
	KeyLockOwner  = "lock_owner"  // Lock owner identifier
	KeyWaiters    = "waiters"     // Number of requests parked on a record
)

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

// Operation returns a slog.Attr for the sub-operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a named error code.
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// Attempt returns a slog.Attr for a retry/requeue attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// ----------------------------------------------------------------------------
// Identity
// ----------------------------------------------------------------------------

// Handle returns a slog.Attr for a file handle.
func Handle(h string) slog.Attr {
	return slog.String(KeyHandle, h)
}

// SessionID returns a slog.Attr for a session identifier.
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// RequestID returns a slog.Attr for a request/process identifier.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// UID returns a slog.Attr for a user ID.
func UID(uid uint32) slog.Attr {
	return slog.Uint64(KeyUID, uint64(uid))
}

// ----------------------------------------------------------------------------
// Locking
// ----------------------------------------------------------------------------

// LockType returns a slog.Attr for the lock type.
func LockType(t string) slog.Attr {
	return slog.String(KeyLockType, t)
}

// LockOffset returns a slog.Attr for the lock range start.
func LockOffset(off uint64) slog.Attr {
	return slog.Uint64(KeyLockOffset, off)
}

// LockLength returns a slog.Attr for the lock range length.
func LockLength(length uint64) slog.Attr {
	return slog.Uint64(KeyLockLength, length)
}

// LockOwner returns a slog.Attr for the lock owner identifier.
func LockOwner(owner string) slog.Attr {
	return slog.String(KeyLockOwner, owner)
}

// Waiters returns a slog.Attr for the number of requests parked on a record.
func Waiters(n int) slog.Attr {
	return slog.Int(KeyWaiters, n)
}
