package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents internal error codes for engine operations
type ErrorCode int

const (
	// Success
	ErrCodeOK ErrorCode = 0

	// Client errors (4xx equivalent)
	ErrCodeValidation          ErrorCode = 1000
	ErrCodeUnauthorized        ErrorCode = 1001
	ErrCodeTokenNotFound       ErrorCode = 1002
	ErrCodeMissingPrecondition ErrorCode = 1003
	ErrCodeInvalidArgument     ErrorCode = 1004
	ErrCodeNotFound            ErrorCode = 1005

	// Engine/transport errors (5xx equivalent)
	ErrCodeInternal    ErrorCode = 2000
	ErrCodeNetwork     ErrorCode = 2001
	ErrCodeCacheFailed ErrorCode = 2002
	ErrCodeWorkerDown  ErrorCode = 2003
)

// EngineError represents a structured error with code and context
type EngineError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps internal error codes to HTTP status codes
func (e *EngineError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeOK:
		return http.StatusOK
	case ErrCodeValidation, ErrCodeInvalidArgument, ErrCodeMissingPrecondition:
		return http.StatusBadRequest
	case ErrCodeUnauthorized, ErrCodeTokenNotFound:
		return http.StatusUnauthorized
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, cause error) *EngineError {
	return &EngineError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Cause:   cause,
	}
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// Convenience constructors for common errors

func InvalidArgument(message string, cause error) *EngineError {
	return NewEngineError(ErrCodeInvalidArgument, message, cause)
}

func ValidationFailed(field, reason string) *EngineError {
	return NewEngineError(ErrCodeValidation, fmt.Sprintf("validation failed on field %q: %s", field, reason), nil).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func Unauthorized(message string) *EngineError {
	return NewEngineError(ErrCodeUnauthorized, message, nil)
}

func TokenNotFound(id string) *EngineError {
	return NewEngineError(ErrCodeTokenNotFound, fmt.Sprintf("no token cached for identifier: %s", id), nil).
		WithDetail("identifier", id)
}

func MissingTimestamp(operation string) *EngineError {
	return NewEngineError(ErrCodeMissingPrecondition, fmt.Sprintf("%s requires a data timestamp but none is set", operation), nil).
		WithDetail("operation", operation)
}

func NetworkFailure(operation string, cause error) *EngineError {
	return NewEngineError(ErrCodeNetwork, fmt.Sprintf("%s failed", operation), cause).
		WithDetail("operation", operation)
}

func CacheFailed(operation string, cause error) *EngineError {
	return NewEngineError(ErrCodeCacheFailed, fmt.Sprintf("token cache %s failed", operation), cause).
		WithDetail("operation", operation)
}

// IsUnauthorized reports whether err carries an authorization failure code
func IsUnauthorized(err error) bool {
	var ee *EngineError
	if goerrors.As(err, &ee) {
		return ee.Code == ErrCodeUnauthorized || ee.Code == ErrCodeTokenNotFound
	}
	return false
}

// FieldOf returns the offending field recorded on a validation error,
// or an empty string when err is not a validation failure.
func FieldOf(err error) string {
	var ee *EngineError
	if goerrors.As(err, &ee) && ee.Code == ErrCodeValidation {
		if f, ok := ee.Details["field"].(string); ok {
			return f
		}
	}
	return ""
}
