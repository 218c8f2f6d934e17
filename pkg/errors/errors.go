package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal server errors
	ErrorTypeInternal ErrorType = "internal"

	// ErrorTypeValidation represents input validation errors
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeNotFound represents resource not found errors
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeUnauthorized represents authentication errors
	ErrorTypeUnauthorized ErrorType = "unauthorized"

	// ErrorTypeForbidden represents authorization errors
	ErrorTypeForbidden ErrorType = "forbidden"

	// ErrorTypeExternal represents external service errors
	ErrorTypeExternal ErrorType = "external"
)

// AppError represents an application error with additional context
type AppError struct {
	Type       ErrorType         `json:"type"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Err        error             `json:"-"`
	StatusCode int               `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key, value string) *AppError {
	clone := *e
	clone.Details = make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}

// Wrap attaches an underlying cause without mutating the sentinel.
func (e *AppError) Wrap(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// Common error instances
var (
	// ErrUnknownMetric signals a metric name missing from the catalog; a
	// client-input error, not a server fault.
	ErrUnknownMetric = &AppError{
		Type:       ErrorTypeValidation,
		Code:       "UNKNOWN_METRIC",
		Message:    "Requested metric is not in the catalog",
		StatusCode: 400,
	}

	// ErrDataAccess is a storage failure surfaced from the fact repository,
	// propagated unmodified and never retried inside the engine.
	ErrDataAccess = &AppError{
		Type:       ErrorTypeInternal,
		Code:       "DATA_ACCESS_FAILURE",
		Message:    "Failed to read financial facts",
		StatusCode: 500,
	}

	// ErrClientNotFound signals an unknown client identifier.
	ErrClientNotFound = &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "CLIENT_NOT_FOUND",
		Message:    "Client not found",
		StatusCode: 404,
	}

	// ErrTargetNotFound signals a delete against a metric with no target rows.
	ErrTargetNotFound = &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "TARGET_NOT_FOUND",
		Message:    "No target set for metric",
		StatusCode: 404,
	}

	// ErrInvalidCredentials signals a failed login attempt.
	ErrInvalidCredentials = &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		StatusCode: 401,
	}

	// ErrInsightUnavailable signals the AI collaborator is unreachable.
	ErrInsightUnavailable = &AppError{
		Type:       ErrorTypeExternal,
		Code:       "INSIGHT_UNAVAILABLE",
		Message:    "Insight generation is temporarily unavailable",
		StatusCode: 503,
	}
)

// AsAppError extracts an AppError from an error chain, if present.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
