// Package apperr defines the error kinds surfaced by the API and how they map to HTTP statuses.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindInvalidCredentials
	KindUnauthenticated
	KindForbidden
	KindAccountDisabled
	KindNotFound
	KindUnavailable
)

var kindNames = map[Kind]string{
	KindInternal:           "INTERNAL",
	KindValidation:         "VALIDATION",
	KindConflict:           "CONFLICT",
	KindInvalidCredentials: "INVALID_CREDENTIALS",
	KindUnauthenticated:    "UNAUTHENTICATED",
	KindForbidden:          "FORBIDDEN",
	KindAccountDisabled:    "ACCOUNT_DISABLED",
	KindNotFound:           "NOT_FOUND",
	KindUnavailable:        "UNAVAILABLE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "INTERNAL"
}

// Error carries a Kind plus a client-safe message. Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func Internal(err error) *Error        { return Wrap(KindInternal, "internal server error", err) }

// KindOf reports the Kind of err. Errors that are not *Error are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a Kind onto the status code returned to API clients.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden, KindAccountDisabled:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		// UNAVAILABLE (hardware link closed) is reported as 500 like any other server-side fault
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
