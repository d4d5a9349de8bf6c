// Package apperror defines the structured application error shared by all
// layers. An Error carries a client-facing message and an HTTP status
// classification. Components never render their own error responses; they
// attach a classification here and let the central HTTP error handler
// produce the single JSON response for the request.
package apperror

import (
	"fmt"
	"net/http"
	"strings"
)

// Error is a classified application failure. The Status field selects the
// HTTP status code and controls whether internal detail is suppressed from
// the client (500s are masked in production).
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

// New builds an Error with an explicit status classification.
func New(status int, message string) *Error {
	return &Error{Message: message, Status: status}
}

// BadRequest classifies malformed input from the client.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// BadRequestf is BadRequest with printf formatting.
func BadRequestf(format string, args ...any) *Error {
	return BadRequest(fmt.Sprintf(format, args...))
}

// Unauthorized classifies missing or failed authentication.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden classifies an authenticated principal lacking a required role.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// NotFound classifies a lookup miss on an addressable resource.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Internal classifies unexpected server-side failures.
func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// InvalidID classifies a path or query identifier that failed to parse.
// The message names the offending field so clients can tell which part of
// the request was malformed.
func InvalidID(field, value string) *Error {
	return BadRequestf("Invalid %s: %s.", field, value)
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates field-level failures from input validation.
// The error handler flattens all field messages into one 400 response.
type ValidationError struct {
	Fields []FieldError
}

// Add appends a field failure. Returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether any field failed validation.
func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// Error joins all field messages into a single comma-separated string.
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, ", ")
}
