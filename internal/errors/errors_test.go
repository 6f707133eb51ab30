package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		code       string
		fields     map[string][]string
	}{
		{
			name:       "validation error keeps fields",
			err:        fmt.Errorf("create tag: %w", NewValidationError("name", "This field may not be blank.")),
			statusCode: http.StatusBadRequest,
			code:       "VALIDATION_ERROR",
			fields:     map[string][]string{"name": {"This field may not be blank."}},
		},
		{
			name:       "conflict is a field level bad request",
			err:        &ConflictError{Field: "email", Message: "user with this email already exists"},
			statusCode: http.StatusBadRequest,
			code:       "CONFLICT",
			fields:     map[string][]string{"email": {"user with this email already exists"}},
		},
		{
			name:       "invalid credentials",
			err:        ErrInvalidCredentials,
			statusCode: http.StatusBadRequest,
			code:       "INVALID_CREDENTIALS",
			fields:     map[string][]string{NonFieldErrors: {ErrInvalidCredentials.Error()}},
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("retrieve recipe 4: %w", ErrNotFound),
			statusCode: http.StatusNotFound,
			code:       "NOT_FOUND",
		},
		{
			name:       "unauthenticated",
			err:        ErrUnauthenticated,
			statusCode: http.StatusUnauthorized,
			code:       "UNAUTHENTICATED",
		},
		{
			name:       "method not allowed",
			err:        ErrMethodNotAllowed,
			statusCode: http.StatusMethodNotAllowed,
			code:       "METHOD_NOT_ALLOWED",
		},
		{
			name:       "unknown error hides details",
			err:        fmt.Errorf("dial tcp: connection refused"),
			statusCode: http.StatusInternalServerError,
			code:       "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.statusCode, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
			assert.Equal(t, tt.fields, httpErr.ToErrorResponse().Fields)
		})
	}
}

func TestValidationError_Add(t *testing.T) {
	var verr ValidationError
	assert.True(t, verr.Empty())

	verr.Add("tags", "Invalid pk \"9\" - object does not exist.")
	verr.Add("price", "Ensure this value is greater than or equal to 0.")

	assert.False(t, verr.Empty())
	assert.Equal(t,
		`validation failed: price: Ensure this value is greater than or equal to 0., tags: Invalid pk "9" - object does not exist.`,
		verr.Error())
}
