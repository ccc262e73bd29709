// Package apperr defines the error kinds the data API maps onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Kind classifies an Error for transport mapping.
type Kind string

// Error kinds surfaced by the storage and assembly layers.
const (
	KindConfig   Kind = "CONFIG"
	KindStorage  Kind = "STORAGE"
	KindNotFound Kind = "NOT_FOUND"
	KindNoData   Kind = "NO_DATA"
	KindInternal Kind = "INTERNAL"
)

// Error is a classified failure carrying the stack where it was raised.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	Stack   []byte
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StackTrace returns the stack captured when the error was created.
func (e *Error) StackTrace() []byte {
	return e.Stack
}

// New builds an Error of the given kind. The stack of a wrapped go-errors
// value is reused so the original call site is kept.
func New(kind Kind, message string, err error) *Error {
	var stack []byte
	var ge *goerrors.Error
	switch {
	case err != nil && errors.As(err, &ge):
		stack = ge.Stack()
	case err != nil:
		stack = goerrors.Wrap(err, 2).Stack()
	default:
		stack = goerrors.New(message).Stack()
	}
	return &Error{Kind: kind, Message: message, Err: err, Stack: stack}
}

// Config reports missing or invalid configuration.
func Config(message string, err error) *Error {
	return New(KindConfig, message, err)
}

// Storage reports a connection or query failure.
func Storage(message string, err error) *Error {
	return New(KindStorage, message, err)
}

// NotFound reports an unknown entity identifier.
func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

// NoData reports an export that matched zero rows.
func NoData(message string) *Error {
	return New(KindNoData, message, nil)
}

// Internal reports an unexpected processing failure.
func Internal(message string, err error) *Error {
	return New(KindInternal, message, err)
}

// KindOf returns the kind of the first Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
