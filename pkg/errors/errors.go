// Package errors defines unified error types for query resolution.
// Cache, generation, and validation failures are all mapped to these
// standard types so the HTTP layer can render them consistently.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types as constants for consistency.
const (
	TypeCacheBackend   = "cache_backend_error"
	TypeGeneration     = "generation_error"
	TypeSchemaMismatch = "schema_mismatch_error"
	TypeInvalidRequest = "invalid_request_error"
	TypeUnexpected     = "unexpected_error"
)

// QueryError represents a standardized error from the resolution pipeline.
// It carries everything needed for error handling, logging, and the client response.
type QueryError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for the error.
func (e *QueryError) HTTPStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// NewCacheBackendError creates an error for a failed cache lookup or store.
// The op names the failing operation ("lookup", "store").
func NewCacheBackendError(op string, err error) *QueryError {
	return &QueryError{
		StatusCode: http.StatusBadGateway,
		Message:    fmt.Sprintf("cache %s failed", op),
		Type:       TypeCacheBackend,
		Err:        err,
	}
}

// NewGenerationError creates an error for the generation-and-validation path.
// The detail is surfaced verbatim to the caller.
func NewGenerationError(detail string) *QueryError {
	return &QueryError{
		StatusCode: http.StatusUnprocessableEntity,
		Message:    detail,
		Type:       TypeGeneration,
	}
}

// NewSchemaMismatchError creates an error for a generation output that is
// missing a required field.
func NewSchemaMismatchError(field string) *QueryError {
	return &QueryError{
		StatusCode: http.StatusUnprocessableEntity,
		Message:    fmt.Sprintf("required field %q is missing or empty", field),
		Type:       TypeSchemaMismatch,
	}
}

// NewInvalidRequestError creates an error for a malformed caller request.
func NewInvalidRequestError(message string) *QueryError {
	return &QueryError{
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Type:       TypeInvalidRequest,
	}
}

// NewUnexpectedError wraps anything not covered by the taxonomy above.
func NewUnexpectedError(err error) *QueryError {
	return &QueryError{
		StatusCode: http.StatusInternalServerError,
		Message:    "internal error",
		Type:       TypeUnexpected,
		Err:        err,
	}
}

// AsQueryError extracts a *QueryError from an error chain.
// Anything else is wrapped as an unexpected error.
func AsQueryError(err error) *QueryError {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe
	}
	return NewUnexpectedError(err)
}

// IsType reports whether err is a QueryError of the given type.
func IsType(err error, errType string) bool {
	var qe *QueryError
	if !errors.As(err, &qe) {
		return false
	}
	return qe.Type == errType
}

// IsGenerationError reports whether err came from the generation-and-validation path.
func IsGenerationError(err error) bool {
	return IsType(err, TypeGeneration) || IsType(err, TypeSchemaMismatch)
}

// IsCacheBackendError reports whether err came from the cache backend.
func IsCacheBackendError(err error) bool {
	return IsType(err, TypeCacheBackend)
}
