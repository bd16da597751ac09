package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for a lock operation.
type LogContext struct {
	TraceID   string    // caller-supplied correlation ID for multi-log request tracing
	SpanID    string    // caller-supplied sub-operation ID
	Operation string    // acquire, release, check_access, destroy_by_handle
	Handle    string    // file handle the operation targets
	SessionID string    // session identifier of the requester
	UID       uint32    // effective user ID of the requester
	StartTime time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for an operation against a handle.
func NewLogContext(operation, handle string) *LogContext {
	return &LogContext{
		Operation: operation,
		Handle:    handle,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:   lc.TraceID,
		SpanID:    lc.SpanID,
		Operation: lc.Operation,
		Handle:    lc.Handle,
		SessionID: lc.SessionID,
		UID:       lc.UID,
		StartTime: lc.StartTime,
	}
}

// WithOperation returns a copy with the operation set
func (lc *LogContext) WithOperation(operation string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Operation = operation
	}
	return clone
}

// WithHandle returns a copy with the file handle set
func (lc *LogContext) WithHandle(handle string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Handle = handle
	}
	return clone
}

// WithIdentity returns a copy with the requester's session and UID set
func (lc *LogContext) WithIdentity(sessionID string, uid uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.SessionID = sessionID
		clone.UID = uid
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
