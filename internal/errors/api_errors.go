package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError represents a failed call to the destination server's API
type APIError struct {
	Op      string // Operation that failed
	Message string // Error message
	Status  int    // HTTP status code (if applicable)
	Err     error  // Underlying error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the status suggests a transient server-side failure.
func (e *APIError) Retryable() bool {
	switch e.Status {
	case 0,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// NewAPIError creates a new APIError without an HTTP status (transport failure)
func NewAPIError(op, message string, err error) *APIError {
	return &APIError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewAPIHTTPError creates a new APIError with HTTP status
func NewAPIHTTPError(op string, status int, message string, err error) *APIError {
	return &APIError{
		Op:      op,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// IsConflict checks if the error indicates the resource already exists
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsNotFound checks if the error indicates a resource was not found
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, status int) bool {
	var ae *APIError
	if stderrors.As(err, &ae) {
		return ae.Status == status
	}
	return false
}
