package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different classes of failure in the mirror pipeline
type ErrorType string

const (
	// ErrorTypeTransport covers network and HTTP-level failures.
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeRateLimit is a transport failure caused by upstream throttling.
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeNotFound is a terminal transport failure (4xx that won't change).
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeAuth means upstream demanded a login.
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeSchemaMismatch means no known payload shape matched.
	ErrorTypeSchemaMismatch ErrorType = "schema_mismatch"
	// ErrorTypeFieldMissing is a per-post failure to resolve a field.
	ErrorTypeFieldMissing ErrorType = "field_missing"
	// ErrorTypePersistence covers record and blob collaborator failures.
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeExhausted means every extraction strategy failed.
	ErrorTypeExhausted ErrorType = "exhausted"
	// ErrorTypeUnknown is everything else.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error represents a typed pipeline error
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed error without an HTTP code.
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Newf creates a typed error from a format string.
func Newf(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown for untyped errors.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given ErrorType.
func Is(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeTransport, ErrorTypeRateLimit:
		return true
	case ErrorTypeAuth, ErrorTypeNotFound, ErrorTypeSchemaMismatch,
		ErrorTypeFieldMissing, ErrorTypePersistence, ErrorTypeExhausted:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500
	}
}
