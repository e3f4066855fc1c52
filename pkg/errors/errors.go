package errors

import (
	goerrors "errors"
	"net/http"
	"strings"
)

// AppError is a custom error type that includes an HTTP status code
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates a new AppError
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Common errors
var (
	ErrInvalidRequest = NewAppError(http.StatusBadRequest, "Invalid request parameters")
	ErrUnauthorized   = NewAppError(http.StatusUnauthorized, "Unauthorized access")
	ErrForbidden      = NewAppError(http.StatusForbidden, "Access denied")
	ErrNotFound       = NewAppError(http.StatusNotFound, "Resource not found")
	ErrInternalServer = NewAppError(http.StatusInternalServerError, "Internal server error")
)

// Helper functions to create specific errors
func BadRequest(msg string) *AppError {
	return NewAppError(http.StatusBadRequest, msg)
}

func NotFound(msg string) *AppError {
	return NewAppError(http.StatusNotFound, msg)
}

func Unauthorized(msg string) *AppError {
	return NewAppError(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) *AppError {
	return NewAppError(http.StatusForbidden, msg)
}

func Internal(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, msg)
}

// Ledger error taxonomy.
//
// Conflict covers double-resolution of a verification and claiming an
// already-held badge. CapacityExceeded is a badge recipient cap hit at claim
// time; evaluation treats it like "criteria not met" while direct API callers
// see the 409. Transient wraps storage failures that are safe to retry
// because evaluation is idempotent.

const capacityExceededPrefix = "Recipient limit reached"

func Conflict(msg string) *AppError {
	return NewAppError(http.StatusConflict, msg)
}

func CapacityExceeded(badgeName string) *AppError {
	return NewAppError(http.StatusConflict, capacityExceededPrefix+": "+badgeName)
}

func Transient(msg string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, msg)
}

// IsConflict reports whether err carries a 409.
func IsConflict(err error) bool {
	var appErr *AppError
	if goerrors.As(err, &appErr) {
		return appErr.Code == http.StatusConflict
	}
	return false
}

// IsCapacityExceeded distinguishes a cap hit from other conflicts so callers
// can count the two separately.
func IsCapacityExceeded(err error) bool {
	var appErr *AppError
	if goerrors.As(err, &appErr) {
		return appErr.Code == http.StatusConflict && strings.HasPrefix(appErr.Message, capacityExceededPrefix)
	}
	return false
}

// IsNotFound reports whether err carries a 404.
func IsNotFound(err error) bool {
	var appErr *AppError
	if goerrors.As(err, &appErr) {
		return appErr.Code == http.StatusNotFound
	}
	return false
}
