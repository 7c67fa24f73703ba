package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrUnconfigured = errors.New("unconfigured")
	ErrTimeout      = errors.New("generation timed out")
	ErrNoResponse   = errors.New("no response from assistant")
	ErrUpstream     = errors.New("upstream error")
	ErrNotFound     = errors.New("resource not found")
	ErrInternal     = errors.New("internal error")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	HTTPStatus int               `json:"-"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidInput creates an error for malformed or missing form fields
func InvalidInput(message string) *AppError {
	return &AppError{
		Err:        ErrInvalidInput,
		Message:    message,
		Code:       "INVALID_INPUT",
		HTTPStatus: http.StatusBadRequest,
	}
}

// Validation creates an invalid-input error with field details
func Validation(message string, details map[string]string) *AppError {
	return &AppError{
		Err:        ErrInvalidInput,
		Message:    message,
		Code:       "INVALID_INPUT",
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// InvalidToken creates an error for a rejected identity credential
func InvalidToken(message string) *AppError {
	return &AppError{
		Err:        ErrInvalidToken,
		Message:    message,
		Code:       "INVALID_TOKEN",
		HTTPStatus: http.StatusBadRequest,
	}
}

// Unconfigured creates an error for a missing credential or assistant identity.
// Configuration failures must be detected before any network call is attempted.
func Unconfigured(what string) *AppError {
	return &AppError{
		Err:        ErrUnconfigured,
		Message:    fmt.Sprintf("%s is not configured", what),
		Code:       "UNCONFIGURED",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Timeout creates an error for a generation job that exceeded its deadline
func Timeout(message string) *AppError {
	return &AppError{
		Err:        ErrTimeout,
		Message:    message,
		Code:       "GENERATION_TIMEOUT",
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

// NoResponse creates an error for a completed job with no assistant output
func NoResponse(message string) *AppError {
	return &AppError{
		Err:        ErrNoResponse,
		Message:    message,
		Code:       "NO_RESPONSE",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Upstream wraps a failure of the external generation service. The upstream
// message is preserved for logs via Unwrap but never shown to the end user.
func Upstream(err error) *AppError {
	return &AppError{
		Err:        fmt.Errorf("%w: %w", ErrUpstream, err),
		Message:    "error communicating with the generation service",
		Code:       "UPSTREAM_ERROR",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		Code:       "NOT_FOUND",
		HTTPStatus: http.StatusNotFound,
	}
}

// Internal creates an internal error
func Internal(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "internal server error",
		Code:       "INTERNAL_ERROR",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) *AppError {
	if appErr, ok := err.(*AppError); ok {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "INTERNAL_ERROR",
		HTTPStatus: http.StatusInternalServerError,
	}
}
