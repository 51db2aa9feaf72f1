package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name           string
		err            *APIError
		expectedString string
	}{
		{
			name: "error with status",
			err: &APIError{
				Op:      "CreateOrgRepo",
				Message: "repository already exists",
				Status:  http.StatusConflict,
			},
			expectedString: "CreateOrgRepo: repository already exists (HTTP 409)",
		},
		{
			name: "error without status",
			err: &APIError{
				Op:      "CreateOrgRepo",
				Message: "connection refused",
				Err:     fmt.Errorf("dial tcp"),
			},
			expectedString: "CreateOrgRepo: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedString, tt.err.Error())
		})
	}
}

func TestNewAPIHTTPError(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	err := NewAPIHTTPError("TestOp", http.StatusBadRequest, "test message", underlying)

	assert.Equal(t, "TestOp", err.Op)
	assert.Equal(t, "test message", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, underlying, err.Unwrap())
}

func TestStatusPredicates(t *testing.T) {
	conflict := NewAPIHTTPError("op", http.StatusConflict, "exists", nil)
	notFound := NewAPIHTTPError("op", http.StatusNotFound, "missing", nil)

	assert.True(t, IsConflict(conflict))
	assert.True(t, IsConflict(fmt.Errorf("wrapped: %w", conflict)))
	assert.False(t, IsConflict(notFound))
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(fmt.Errorf("plain")))
}

func TestAPIError_Retryable(t *testing.T) {
	assert.True(t, NewAPIError("op", "timeout", nil).Retryable())
	assert.True(t, NewAPIHTTPError("op", http.StatusServiceUnavailable, "down", nil).Retryable())
	assert.False(t, NewAPIHTTPError("op", http.StatusUnprocessableEntity, "invalid", nil).Retryable())
	assert.False(t, NewAPIHTTPError("op", http.StatusConflict, "exists", nil).Retryable())
}
