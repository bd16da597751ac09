// Package lock implements the byte-range lock core for an SMB-style file
// server: an overlap-aware rule engine, a per-file lock list guarded by a
// readers-writer gate, and a blocking wait/wake coordinator with timeouts,
// cancellation, and a conflict graph for observability.
package lock

// Status is the outcome of a lock-core operation, returned verbatim to
// callers and mapped to SMB status codes at the server boundary.
type Status int

const (
	// Success indicates the operation completed as requested.
	Success Status = iota

	// LockNotGranted indicates a non-blocking lock request conflicted with
	// a granted lock.
	LockNotGranted

	// FileLockConflict is a LockNotGranted or Cancelled outcome remapped by
	// Manager.remap's heuristics, and the status checkAccess returns when an
	// I/O conflicts with a granted lock.
	FileLockConflict

	// RangeNotLocked indicates an unlock target is absent from the list,
	// or that the file handle was closed at grant time.
	RangeNotLocked

	// Cancelled indicates a blocking wait timed out or was canceled.
	Cancelled

	// LockLimitExceeded indicates a configured lock-table limit was hit.
	// Additive to the core taxonomy above; never replaces it.
	LockLimitExceeded
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case LockNotGranted:
		return "LOCK_NOT_GRANTED"
	case FileLockConflict:
		return "FILE_LOCK_CONFLICT"
	case RangeNotLocked:
		return "RANGE_NOT_LOCKED"
	case Cancelled:
		return "CANCELLED"
	case LockLimitExceeded:
		return "LOCK_LIMIT_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}
