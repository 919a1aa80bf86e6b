package errors

import (
	"errors"
	"fmt"
)

// Not-found and permission conditions surfaced verbatim to the caller,
// never retried.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmptyBatch         = errors.New("no pending items")
	ErrCodeNotFound       = errors.New("code not found")
	ErrNoPendingBroadcast = errors.New("no pending broadcast")
)

// ErrCodeTaken signals a code reservation collision at commit time.
// The caller regenerates and retries.
var ErrCodeTaken = errors.New("code already taken")

// Check if err is instance of T for custom error types
func Is[T error](err error) bool {
	if _, ok := err.(T); ok {
		return true
	}
	return false
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// TransientError wraps a delivery failure that is worth retrying.
// Anything not wrapped in it is treated as permanent.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %s", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient marks err as retryable. Returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is marked retryable anywhere in its chain.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
