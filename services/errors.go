// services/errors.go
package services

import (
	"errors"
	"fmt"
)

// ValidationError marks malformed or out-of-range input. Never retried;
// the message is safe to surface verbatim to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidStateError marks an operation that is not legal in the entity's
// current lifecycle state. Surfaced as a user-facing conflict.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

// NewInvalidStateError builds an InvalidStateError from a format string.
func NewInvalidStateError(format string, args ...interface{}) error {
	return &InvalidStateError{Msg: fmt.Sprintf(format, args...)}
}

// DependencyError marks an unavailable external collaborator (record store,
// notification sink). Surfaced as a generic retryable failure.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// NewDependencyError wraps an external failure with the failing operation.
func NewDependencyError(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}

// Sentinel errors for lookup and authorization failures.
var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("operation not permitted for this account")
)

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var se *InvalidStateError
	return errors.As(err, &se)
}

// IsDependency reports whether err is a DependencyError.
func IsDependency(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}
