// Package apperrors defines the error kinds the API speaks. Handlers and
// services return *Error values; the response layer maps the kind to an
// HTTP status. Storage failures are translated to kinds at the database
// boundary with FromDB so driver-specific codes never leak into handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

type Kind int

const (
	Validation Kind = iota
	NotFound
	Conflict
	Unauthorized
	Forbidden
	TooManyAttempts
	Provider
	Internal
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the cause for server-side logging while Message stays
// client-safe.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from any error; unknown errors are Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// HTTPStatus maps an error to its response code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case TooManyAttempts:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// FromDB translates storage-layer failures into domain kinds: missing rows
// become NotFound and unique/constraint violations become Conflict with the
// given message. Anything else is Internal with a generic client message.
func FromDB(err error, conflictMsg string) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(NotFound, "record not found", err)
	}
	if IsUniqueViolation(err) {
		return Wrap(Conflict, conflictMsg, err)
	}
	return Wrap(Internal, "database error", err)
}

// IsUniqueViolation detects duplicate-key failures across the drivers in
// use (MySQL error 1062, sqlite "UNIQUE constraint failed", and gorm's own
// translated sentinel).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1062") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
