package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an entity is absent or owned by another user.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated is returned when a request carries no valid credentials.
	ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")
	// ErrMethodNotAllowed is returned for operations a resource does not define.
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrInvalidCredentials is returned when email or password do not match an active user.
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
)

// NonFieldErrors is the key used for validation messages not tied to one field.
const NonFieldErrors = "non_field_errors"

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates a validation error with a single message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no message was recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ConflictError is returned when a unique key is already taken.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     map[string][]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Fields: e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var (
		validation *ValidationError
		conflict   *ConflictError
	)
	switch {
	case errors.As(err, &validation):
		httpErr := NewHTTPError(http.StatusBadRequest, "invalid input", "VALIDATION_ERROR")
		httpErr.Fields = validation.Fields
		return httpErr
	case errors.As(err, &conflict):
		httpErr := NewHTTPError(http.StatusBadRequest, conflict.Message, "CONFLICT")
		httpErr.Fields = map[string][]string{conflict.Field: {conflict.Message}}
		return httpErr
	case errors.Is(err, ErrInvalidCredentials):
		httpErr := NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CREDENTIALS")
		httpErr.Fields = map[string][]string{NonFieldErrors: {err.Error()}}
		return httpErr
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error(), "NOT_FOUND")
	case errors.Is(err, ErrMethodNotAllowed):
		return NewHTTPError(http.StatusMethodNotAllowed, ErrMethodNotAllowed.Error(), "METHOD_NOT_ALLOWED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
