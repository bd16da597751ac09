// Package errors provides error types and error codes for the lock core.
// This is a leaf package with no internal dependencies, so it can be
// imported by pkg/lock without risk of import cycles.
package errors

import (
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument ErrorCode = iota + 1

	// ErrInvalidHandle indicates the file handle is invalid or closed.
	ErrInvalidHandle

	// ErrLockNotFound indicates the specified lock does not exist (unlock miss).
	ErrLockNotFound

	// ErrLockConflict indicates a non-blocking lock request conflicted with
	// a granted lock.
	ErrLockConflict

	// ErrCancelled indicates a blocking lock request was cancelled or timed out.
	ErrCancelled

	// ErrLockLimitExceeded indicates a configured lock-table limit was hit.
	ErrLockLimitExceeded
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrInvalidHandle:
		return "InvalidHandle"
	case ErrLockNotFound:
		return "LockNotFound"
	case ErrLockConflict:
		return "LockConflict"
	case ErrCancelled:
		return "Cancelled"
	case ErrLockLimitExceeded:
		return "LockLimitExceeded"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// CodedError is an error carrying a machine-checkable code alongside its
// human-readable message.
type CodedError struct {
	Code    ErrorCode
	Message string
	Path    string
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidArgumentError creates an InvalidArgument error.
func NewInvalidArgumentError(message string) *CodedError {
	return &CodedError{Code: ErrInvalidArgument, Message: message}
}

// NewInvalidHandleError creates an InvalidHandle error.
func NewInvalidHandleError(path string) *CodedError {
	return &CodedError{Code: ErrInvalidHandle, Message: "file handle is closed", Path: path}
}

// NewLockNotFoundError creates a LockNotFound error.
func NewLockNotFoundError(path string) *CodedError {
	return &CodedError{Code: ErrLockNotFound, Message: "lock not found", Path: path}
}

// NewLockConflictError creates a LockConflict error.
func NewLockConflictError(path, reason string) *CodedError {
	if reason == "" {
		reason = "lock conflict"
	}
	return &CodedError{Code: ErrLockConflict, Message: reason, Path: path}
}

// NewCancelledError creates a Cancelled error for a timed-out or cancelled wait.
func NewCancelledError(path string) *CodedError {
	return &CodedError{Code: ErrCancelled, Message: "wait cancelled or timed out", Path: path}
}

// NewLockLimitExceededError creates a LockLimitExceeded error.
func NewLockLimitExceededError(limitType string, current, max int) *CodedError {
	return &CodedError{
		Code:    ErrLockLimitExceeded,
		Message: fmt.Sprintf("%s lock limit exceeded (%d/%d)", limitType, current, max),
	}
}

// IsLockConflictError returns true if the error is a lock conflict.
func IsLockConflictError(err error) bool {
	if ce, ok := err.(*CodedError); ok {
		return ce.Code == ErrLockConflict
	}
	return false
}

// IsLockNotFoundError returns true if the error is a missing-lock error.
func IsLockNotFoundError(err error) bool {
	if ce, ok := err.(*CodedError); ok {
		return ce.Code == ErrLockNotFound
	}
	return false
}

// IsCancelledError returns true if the error is a cancelled/timed-out wait.
func IsCancelledError(err error) bool {
	if ce, ok := err.(*CodedError); ok {
		return ce.Code == ErrCancelled
	}
	return false
}
