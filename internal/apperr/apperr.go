// Package apperr defines the typed failures returned by every public operation.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure
type Kind string

const (
	NotFound          Kind = "not_found"
	Forbidden         Kind = "forbidden"
	Unauthorized      Kind = "unauthorized"
	InvalidArgument   Kind = "invalid_argument"
	StorageError      Kind = "storage_error"
	ConflictRetryable Kind = "conflict"
	Internal          Kind = "internal"
)

// Error is a failure tagged with a Kind
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind, keeping it in the chain
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// Ensure returns err unchanged when it is already typed; otherwise it wraps
// it as Internal so callers always see a Kind.
func Ensure(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
	}
	return Wrap(Internal, err, format, args...)
}

// Message returns the message of the outermost *Error, falling back to err.Error()
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
