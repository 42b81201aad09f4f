package service

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes service failures. The calling layer maps kinds to its
// own status vocabulary; the core never encodes transport-level codes.
type ErrorKind string

const (
	// KindValidation means the request shape or an invariant check failed.
	// Detected before any reservation or mutation, never retried automatically.
	KindValidation ErrorKind = "VALIDATION"

	// KindConflict means an idempotency token collided with a still-reserved
	// or already-completed entry, or a state transition was repeated.
	KindConflict ErrorKind = "CONFLICT"

	// KindNotFound means a referenced user, record or category is absent.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindInternal means a transactional or storage fault. Logged in full,
	// surfaced without statement detail.
	KindInternal ErrorKind = "INTERNAL"
)

// Error is the failure type every service operation returns.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error for errors.Is/As matching.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a service error, defaulting to KindInternal for
// anything unrecognized.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

func validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
