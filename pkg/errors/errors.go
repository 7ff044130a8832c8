package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeLimitExceeded = "LIMIT_EXCEEDED"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// APIError is a business error carrying a stable code and the HTTP status it
// maps to at the edge. Services return APIError for every anticipated failure;
// anything else is translated to a generic 500 by the handler layer.
type APIError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func New(code string, status int, message string, err error) *APIError {
	return &APIError{Code: code, Status: status, Message: message, Err: err}
}

func Validation(format string, args ...interface{}) *APIError {
	return New(ErrCodeValidation, http.StatusBadRequest, fmt.Sprintf(format, args...), nil)
}

func NotFound(format string, args ...interface{}) *APIError {
	return New(ErrCodeNotFound, http.StatusNotFound, fmt.Sprintf(format, args...), nil)
}

func Conflict(format string, args ...interface{}) *APIError {
	return New(ErrCodeConflict, http.StatusConflict, fmt.Sprintf(format, args...), nil)
}

func LimitExceeded(format string, args ...interface{}) *APIError {
	return New(ErrCodeLimitExceeded, http.StatusUnprocessableEntity, fmt.Sprintf(format, args...), nil)
}

func Unauthorized(message string) *APIError {
	return New(ErrCodeUnauthorized, http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *APIError {
	return New(ErrCodeForbidden, http.StatusForbidden, message, nil)
}

func Internal(message string, err error) *APIError {
	return New(ErrCodeInternal, http.StatusInternalServerError, message, err)
}

// StatusOf returns the HTTP status for err, or 500 for unclassified errors.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the stable error code for err, or INTERNAL_ERROR.
func CodeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ErrCodeInternal
}

func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

func IsNotFound(err error) bool      { return IsCode(err, ErrCodeNotFound) }
func IsConflict(err error) bool      { return IsCode(err, ErrCodeConflict) }
func IsValidation(err error) bool    { return IsCode(err, ErrCodeValidation) }
func IsLimitExceeded(err error) bool { return IsCode(err, ErrCodeLimitExceeded) }
