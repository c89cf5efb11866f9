// Package apperr defines the typed failures handlers surface to clients.
// Anything that is not an *Error is treated as unexpected and collapsed to a
// generic 500 outside development.
package apperr

import (
	"errors"
	"net/http"
)

// Error is an expected failure carrying the HTTP status it maps to.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error with an explicit status.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// BadRequest covers validation failures, conflicts and credential mismatches.
// Conflicts deliberately map to 400 rather than 409, and invalid credentials
// to 400 rather than 404, so responses do not reveal account existence.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Unauthenticated covers missing, malformed or expired tokens.
func Unauthenticated(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden covers callers that are known but not the resource owner.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// NotFound covers absent referenced entities.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Internal covers unexpected storage or hashing failures.
func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// From extracts a typed Error, or nil when err is unexpected.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
