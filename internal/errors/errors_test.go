package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestImportError_Error(t *testing.T) {
	cause := errors.New("connection reset")
	tests := []struct {
		name     string
		err      *ImportError
		expected string
	}{
		{
			name:     "already exists with path",
			err:      NewAlreadyExists("acme/widgets", "/data/git/acme/widgets.git"),
			expected: "destination acme/widgets already exists (/data/git/acme/widgets.git)",
		},
		{
			name:     "already exists remote",
			err:      NewAlreadyExists("acme/widgets", ""),
			expected: "destination acme/widgets already exists",
		},
		{
			name:     "provisioning failed",
			err:      NewProvisioningFailed("acme/widgets", cause),
			expected: "unable to create project acme/widgets: connection reset",
		},
		{
			name:     "clone failed",
			err:      NewCloneFailed("https://github.com/acme/widgets.git", "/data/git/acme/widgets.git", cause),
			expected: "unable to clone https://github.com/acme/widgets.git into /data/git/acme/widgets.git: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("ImportError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestImportError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewCloneFailed("src", "dst", underlying)

	if got := err.Unwrap(); got != underlying {
		t.Errorf("ImportError.Unwrap() = %v, want %v", got, underlying)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find the underlying cause")
	}
}

func TestImportError_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		expected bool
	}{
		{
			name:     "local and remote duplicates match the same sentinel",
			err:      NewAlreadyExists("acme/widgets", "/data/git/acme/widgets.git"),
			target:   ErrAlreadyExists,
			expected: true,
		},
		{
			name:     "remote duplicate",
			err:      NewAlreadyExists("acme/widgets", ""),
			target:   ErrAlreadyExists,
			expected: true,
		},
		{
			name:     "different kinds",
			err:      NewProvisioningFailed("acme/widgets", nil),
			target:   ErrCloneFailed,
			expected: false,
		},
		{
			name:     "wrapped",
			err:      fmt.Errorf("import: %w", NewCloneFailed("a", "b", nil)),
			target:   ErrCloneFailed,
			expected: true,
		},
		{
			name:     "non import error",
			err:      errors.New("boom"),
			target:   ErrAlreadyExists,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.expected {
				t.Errorf("errors.Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(NewProvisioningFailed("p", nil)); got != KindProvisioningFailed {
		t.Errorf("KindOf() = %v, want %v", got, KindProvisioningFailed)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf() = %v, want %v", got, KindUnknown)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %v, want %v", got, KindUnknown)
	}
	if KindCloneFailed.String() != "clone_failed" {
		t.Errorf("Kind.String() = %q", KindCloneFailed.String())
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"already exists", NewAlreadyExists("p", ""), false},
		{"clone failed", NewCloneFailed("s", "d", nil), true},
		{"provisioning transport failure", NewProvisioningFailed("p", NewAPIError("create", "dial tcp", nil)), true},
		{"provisioning server error", NewProvisioningFailed("p", NewAPIHTTPError("create", http.StatusBadGateway, "bad gateway", nil)), true},
		{"provisioning forbidden", NewProvisioningFailed("p", NewAPIHTTPError("create", http.StatusForbidden, "forbidden", nil)), false},
		{"provisioning without api error", NewProvisioningFailed("p", errors.New("no session")), true},
		{"plain error", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.expected)
			}
		})
	}
}
