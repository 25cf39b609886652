package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Common error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeDelivery   = "DELIVERY_FAILURE"
	ErrCodeRateLimit  = "RATE_LIMITED"
)

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// Internal creates an internal server error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message, http.StatusInternalServerError)
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message, http.StatusBadRequest)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// Validation creates a validation error. This is the only error class the
// alert router surfaces to its callers.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest)
}

// ValidationWithDetails creates a validation error carrying field details
func ValidationWithDetails(message string, details any) *AppError {
	return Validation(message).WithDetails(details)
}

// Delivery wraps a channel delivery failure. Delivery errors never cross the
// router's public boundary; they exist so handlers and the dispatcher can
// log a typed failure.
func Delivery(channel string, err error) *AppError {
	return Wrap(err, ErrCodeDelivery,
		fmt.Sprintf("delivery to %s failed", channel),
		http.StatusBadGateway)
}

// RateLimited creates a rate limit error
func RateLimited(message string) *AppError {
	return New(ErrCodeRateLimit, message, http.StatusTooManyRequests)
}

// IsValidation reports whether err is a validation AppError
func IsValidation(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrCodeValidation
	}
	return false
}
