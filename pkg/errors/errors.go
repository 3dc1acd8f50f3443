package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates missing or malformed input
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeUnauthorized indicates a caller is not allowed to use a route
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeAuthentication indicates the upstream token exchange failed
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION"

	// ErrorTypeUpstreamAPI indicates the pricing API answered with a non-2xx status
	ErrorTypeUpstreamAPI ErrorType = "UPSTREAM_API"

	// ErrorTypeUpstreamUnavailable indicates the pricing API could not be reached
	ErrorTypeUpstreamUnavailable ErrorType = "UPSTREAM_UNAVAILABLE"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string

	// StatusCode and Body are only set for ErrorTypeUpstreamAPI.
	StatusCode int
	Body       string

	Err error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Type == ErrorTypeUpstreamAPI {
		return fmt.Sprintf("%s: %s (status %d)", e.Type, e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
	}
}

// NewAuthenticationError creates a token exchange error
func NewAuthenticationError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeAuthentication,
		Message: message,
		Err:     err,
	}
}

// NewUpstreamAPIError creates an error for a non-2xx pricing API response
func NewUpstreamAPIError(operation string, statusCode int, body string) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstreamAPI,
		Message:    fmt.Sprintf("pricing api %s failed", operation),
		StatusCode: statusCode,
		Body:       body,
	}
}

// NewUpstreamUnavailableError creates an error for a network failure or timeout
func NewUpstreamUnavailableError(operation string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeUpstreamUnavailable,
		Message: fmt.Sprintf("pricing api %s unreachable", operation),
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal when err is not an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeValidation
}

// IsUpstream reports whether err came from the pricing API or its token exchange.
func IsUpstream(err error) bool {
	if err == nil {
		return false
	}
	switch TypeOf(err) {
	case ErrorTypeAuthentication, ErrorTypeUpstreamAPI, ErrorTypeUpstreamUnavailable:
		return true
	}
	return false
}

// HTTPStatus maps an error to the status code returned to API callers.
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to API callers.
func PublicMessage(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if appErr.Type == ErrorTypeInternal {
			return "internal server error"
		}
		return appErr.Message
	}
	return "internal server error"
}
