package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a typed failure that carries the HTTP status it maps to.
type Error struct {
	Status int
	Code   string
	Err    error
	Fields []FieldError
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the client-facing text. Server-side failures never leak their cause.
func (e *Error) Message() string {
	if e.Status >= http.StatusInternalServerError {
		return "Internal server error"
	}
	return e.Error()
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(code, msg string) *Error {
	return New(http.StatusNotFound, code, errors.New(msg))
}

func Conflict(code, msg string) *Error {
	return New(http.StatusConflict, code, errors.New(msg))
}

func Unauthorized(code, msg string) *Error {
	return New(http.StatusUnauthorized, code, errors.New(msg))
}

func Forbidden(code, msg string) *Error {
	return New(http.StatusForbidden, code, errors.New(msg))
}

func BadRequest(code, msg string) *Error {
	return New(http.StatusBadRequest, code, errors.New(msg))
}

// Validation builds a 400 error listing every offending field.
func Validation(fields ...FieldError) *Error {
	return &Error{
		Status: http.StatusBadRequest,
		Code:   "VALIDATION_ERROR",
		Err:    errors.New("validation failed"),
		Fields: fields,
	}
}

// Storage wraps a persistence failure. The wrapped error is kept for logs only.
func Storage(err error) *Error {
	return New(http.StatusInternalServerError, "STORAGE_ERROR", err)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, 500 when err is untyped.
func StatusOf(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}
