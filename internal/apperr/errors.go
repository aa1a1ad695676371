// Package apperr defines the closed set of domain failures returned by the
// services and the mapping from each failure kind to an HTTP status and a
// stable machine-readable code.
package apperr

import (
	"errors"
	"net/http"
)

// Kind identifies a class of domain failure.
type Kind int

const (
	KindInternal Kind = iota
	KindAlreadyExists
	KindLoginFailed
	KindUserNotFound
	KindTodoNotFound
	KindImageNotFound
	KindUnauthorized
	KindValidation
)

type kindInfo struct {
	code    string
	message string
	status  int
}

var kinds = map[Kind]kindInfo{
	KindInternal:      {"INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError},
	KindAlreadyExists: {"USER_ALREADY_EXISTS", "User already exists", http.StatusBadRequest},
	KindLoginFailed:   {"LOGIN_FAILED", "Invalid username or password", http.StatusUnauthorized},
	KindUserNotFound:  {"USER_NOT_FOUND", "User not found", http.StatusNotFound},
	KindTodoNotFound:  {"TODO_NOT_FOUND", "Todo not found", http.StatusNotFound},
	KindImageNotFound: {"IMAGE_NOT_FOUND", "Image not found", http.StatusNotFound},
	KindUnauthorized:  {"UNAUTHORIZED", "Unauthorized", http.StatusUnauthorized},
	KindValidation:    {"VALIDATION_FAILED", "Validation failed", http.StatusBadRequest},
}

// Code returns the stable code for the kind.
func (k Kind) Code() string { return kinds[k].code }

// Status returns the HTTP status the kind maps to.
func (k Kind) Status() int { return kinds[k].status }

// Error is a domain failure. Context carries only values that are safe to
// return to the caller; Err holds the underlying cause, which is never
// rendered in a response.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return kinds[e.Kind].message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, apperr.ErrTodoNotFound) matches any todo-not-found failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrLoginFailed   = &Error{Kind: KindLoginFailed}
	ErrUserNotFound  = &Error{Kind: KindUserNotFound}
	ErrTodoNotFound  = &Error{Kind: KindTodoNotFound}
	ErrImageNotFound = &Error{Kind: KindImageNotFound}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
	ErrValidation    = &Error{Kind: KindValidation}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithContext returns a copy of e with the key/value added to its context.
func (e *Error) WithContext(key string, value any) *Error {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Error{Kind: e.Kind, Message: e.Message, Context: ctx, Err: e.Err}
}

func AlreadyExists(name string) *Error {
	return (&Error{Kind: KindAlreadyExists}).WithContext("name", name)
}

func LoginFailed() *Error {
	return &Error{Kind: KindLoginFailed}
}

func UserNotFound(id uint) *Error {
	return (&Error{Kind: KindUserNotFound}).WithContext("user_id", id)
}

func TodoNotFound(id uint) *Error {
	return (&Error{Kind: KindTodoNotFound}).WithContext("todo_id", id)
}

func ImageNotFound(name string) *Error {
	return (&Error{Kind: KindImageNotFound}).WithContext("filename", name)
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Validation builds a validation failure; fields maps a field name to the
// rule it broke.
func Validation(message string, fields map[string]string) *Error {
	e := &Error{Kind: KindValidation, Message: message}
	if len(fields) > 0 {
		e = e.WithContext("fields", fields)
	}
	return e
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// As extracts the domain error from err. Anything that is not an *Error is
// reported as an internal failure wrapping err.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Status returns the HTTP status for err.
func Status(err error) int {
	return As(err).Kind.Status()
}

// Code returns the stable code for err.
func Code(err error) string {
	return As(err).Kind.Code()
}
