package errors

import (
	"net/http"
)

// AppError is a custom error type that includes an HTTP status code
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same kind (same status code),
// so errors.Is(err, ErrNotFound) matches every not-found error.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
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
	ErrConflict       = NewAppError(http.StatusConflict, "Conflicting update")
	ErrValidation     = NewAppError(http.StatusUnprocessableEntity, "Validation failed")
	ErrInternalServer = NewAppError(http.StatusInternalServerError, "Internal server error")
	ErrStorage        = ErrInternalServer
	ErrRateLimit      = NewAppError(http.StatusTooManyRequests, "Rate limit exceeded")
	ErrBadGateway     = NewAppError(http.StatusBadGateway, "Upstream service failed")
	ErrUnavailable    = NewAppError(http.StatusServiceUnavailable, "Service unavailable")
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

func Conflict(msg string) *AppError {
	return NewAppError(http.StatusConflict, msg)
}

// Validation is returned when incoming data (e.g. a generated roadmap) is malformed.
func Validation(msg string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, msg)
}

func RateLimited(msg string) *AppError {
	return NewAppError(http.StatusTooManyRequests, msg)
}

func Internal(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, msg)
}

// Storage wraps a persistence failure. The cause stays reachable through errors.Unwrap
// but is never sent to clients.
func Storage(err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: "Storage unavailable", Err: err}
}

// BadGateway wraps a failure of an upstream collaborator such as the roadmap generator.
func BadGateway(msg string, err error) *AppError {
	return &AppError{Code: http.StatusBadGateway, Message: msg, Err: err}
}

func Unavailable(msg string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, msg)
}
