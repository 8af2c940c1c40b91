// Package apperr defines the error taxonomy shared by the repositories,
// the analytics engine and the HTTP layer. Every failure that reaches a
// client is classified into one Kind, which decides the HTTP status and
// whether the message may be shown verbatim.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	// Internal is the catch-all for unexpected failures.
	Internal Kind = iota
	BadRequest
	Unauthorized
	NotFound
	// Database covers constraint violations and unexpected persistence failures.
	Database
	// Pool means a connection could not be checked out of the pool.
	Pool
)

// GenericMessage is what clients see for every 5xx response.
const GenericMessage = "An internal server error occurred. Please try again later."

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "BadRequest"
	case Unauthorized:
		return "Unauthorized"
	case NotFound:
		return "NotFound"
	case Database:
		return "DatabaseError"
	case Pool:
		return "PoolError"
	default:
		return "InternalServerError"
	}
}

// Status maps the kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Message is safe to show to a client for 4xx
// kinds; Err keeps the underlying cause for server-side logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind with a client-facing message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap classifies err under kind, keeping it as the cause.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// BadRequestf builds a BadRequest error with a formatted message.
func BadRequestf(format string, args ...any) *Error {
	return New(BadRequest, fmt.Sprintf(format, args...))
}

// NotFoundf builds a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

// NewUnauthorized builds an Unauthorized error.
func NewUnauthorized(msg string) *Error {
	return New(Unauthorized, msg)
}

// NewDatabase wraps a persistence failure.
func NewDatabase(err error, detail string) *Error {
	return Wrap(Database, err, detail)
}

// NewPool wraps a connection checkout failure.
func NewPool(err error) *Error {
	return Wrap(Pool, err, "Could not connect to the database.")
}

// NewInternal wraps an unexpected failure.
func NewInternal(err error) *Error {
	return Wrap(Internal, err, "unexpected failure")
}

// KindOf reports the kind of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the message a client may see for err.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind.Status() >= http.StatusInternalServerError {
		return GenericMessage
	}
	return e.Message
}
