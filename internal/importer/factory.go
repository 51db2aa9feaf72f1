// Package importer runs the clone step of a repository import: it registers
// the project on the destination server and mirrors the source repository
// into local storage.
package importer

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/NicabarNimble/go-gitimport/internal/git"
)

// Provisioner creates the remote project record.
type Provisioner interface {
	CreateProject(ctx context.Context, projectName, identity string) error
}

// SourceResolver maps an import target to the URI it is fetched from.
type SourceResolver interface {
	SourceURI(ctx context.Context, organisation, repository string) (string, error)
}

// CredentialSource supplies the transport credentials for the fetch.
// A nil AuthMethod means anonymous access.
type CredentialSource interface {
	Credentials(ctx context.Context) (transport.AuthMethod, error)
}

// Fetcher prepares the destination and mirrors the source into it.
type Fetcher interface {
	InitShell(path string) error
	Fetch(ctx context.Context, opts git.FetchOptions) error
}

// Deps are the collaborators shared by every step a Factory creates.
type Deps struct {
	// GitDir is the storage root; repositories land in GitDir/<org>/<repo>.git.
	GitDir string
	// ImportAccount is the identity the remote project is created as.
	ImportAccount string

	Provisioner Provisioner
	Sources     SourceResolver
	Credentials CredentialSource
	// Fetcher defaults to git.Executor.
	Fetcher Fetcher
}

// Factory creates import steps.
type Factory struct {
	deps Deps
}

// NewFactory validates deps and returns a Factory.
func NewFactory(deps Deps) (*Factory, error) {
	switch {
	case deps.GitDir == "":
		return nil, stderrors.New("git dir cannot be empty")
	case !filepath.IsAbs(deps.GitDir):
		return nil, stderrors.New("git dir must be an absolute path")
	case deps.ImportAccount == "":
		return nil, stderrors.New("import account cannot be empty")
	case deps.Provisioner == nil:
		return nil, stderrors.New("provisioner is required")
	case deps.Sources == nil:
		return nil, stderrors.New("source resolver is required")
	case deps.Credentials == nil:
		return nil, stderrors.New("credential source is required")
	}
	if deps.Fetcher == nil {
		deps.Fetcher = git.Executor{}
	}
	return &Factory{deps: deps}, nil
}

// Create returns a step importing organisation/repository. It fails with
// AlreadyExists if the destination path is already present. No remote call is
// made.
func (f *Factory) Create(organisation, repository string) (*Step, error) {
	path, err := ResolvePath(f.deps.GitDir, organisation, repository)
	if err != nil {
		return nil, err
	}

	s := &Step{
		deps:   f.deps,
		target: Target{Organisation: organisation, Repository: repository},
		path:   path,
		state:  StateNotStarted,
	}
	slog.Debug("import step created", slog.String("project", s.ProjectName()), slog.String("path", path))
	return s, nil
}
