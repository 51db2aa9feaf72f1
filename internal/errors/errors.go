// Package errors defines the failure kinds an import step reports to its caller.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind discriminates import failures.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors outside the import taxonomy.
	KindUnknown Kind = iota
	// KindAlreadyExists means the destination path or the remote project already exists.
	KindAlreadyExists
	// KindProvisioningFailed means the remote project could not be created.
	KindProvisioningFailed
	// KindCloneFailed means the mirror fetch into the destination failed.
	KindCloneFailed
)

func (k Kind) String() string {
	switch k {
	case KindAlreadyExists:
		return "already_exists"
	case KindProvisioningFailed:
		return "provisioning_failed"
	case KindCloneFailed:
		return "clone_failed"
	default:
		return "unknown"
	}
}

// ImportError is the single error type produced by an import step.
// Which payload fields are set depends on Kind.
type ImportError struct {
	Kind      Kind
	Project   string // organisation/repository
	SourceURI string // set for KindCloneFailed
	Path      string // destination directory, when known
	Err       error  // underlying cause
}

// Error implements the error interface
func (e *ImportError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindAlreadyExists:
		fmt.Fprintf(&b, "destination %s already exists", e.Project)
		if e.Path != "" {
			fmt.Fprintf(&b, " (%s)", e.Path)
		}
	case KindProvisioningFailed:
		fmt.Fprintf(&b, "unable to create project %s", e.Project)
	case KindCloneFailed:
		fmt.Fprintf(&b, "unable to clone %s", e.SourceURI)
		if e.Path != "" {
			fmt.Fprintf(&b, " into %s", e.Path)
		}
	default:
		fmt.Fprintf(&b, "import of %s failed", e.Project)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is matches any ImportError of the same kind, so the sentinels below work with errors.Is.
func (e *ImportError) Is(target error) bool {
	t, ok := target.(*ImportError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrAlreadyExists      = &ImportError{Kind: KindAlreadyExists}
	ErrProvisioningFailed = &ImportError{Kind: KindProvisioningFailed}
	ErrCloneFailed        = &ImportError{Kind: KindCloneFailed}
)

// NewAlreadyExists reports that project (or its local path) is already present.
func NewAlreadyExists(project, path string) *ImportError {
	return &ImportError{Kind: KindAlreadyExists, Project: project, Path: path}
}

// NewProvisioningFailed reports a failed remote project creation.
func NewProvisioningFailed(project string, err error) *ImportError {
	return &ImportError{Kind: KindProvisioningFailed, Project: project, Err: err}
}

// NewCloneFailed reports a failed fetch from sourceURI into path.
func NewCloneFailed(sourceURI, path string, err error) *ImportError {
	return &ImportError{Kind: KindCloneFailed, SourceURI: sourceURI, Path: path, Err: err}
}

// KindOf returns the kind of the first ImportError in err's chain.
func KindOf(err error) Kind {
	var ie *ImportError
	if stderrors.As(err, &ie) {
		return ie.Kind
	}
	return KindUnknown
}

// IsAlreadyExists reports whether err is a duplicate import, local or remote.
func IsAlreadyExists(err error) bool {
	return KindOf(err) == KindAlreadyExists
}

// IsRetryable reports whether running a fresh import step for the same target may succeed.
// Client-side rejections from the remote API are not retried.
func IsRetryable(err error) bool {
	var ie *ImportError
	if !stderrors.As(err, &ie) {
		return false
	}
	switch ie.Kind {
	case KindProvisioningFailed:
		var apiErr *APIError
		if stderrors.As(ie.Err, &apiErr) && apiErr.Status != 0 {
			return apiErr.Retryable()
		}
		return true
	case KindCloneFailed:
		return true
	default:
		return false
	}
}
