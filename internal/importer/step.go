package importer

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/NicabarNimble/go-gitimport/internal/errors"
	"github.com/NicabarNimble/go-gitimport/internal/git"
	"github.com/NicabarNimble/go-gitimport/internal/progress"
	"github.com/NicabarNimble/go-gitimport/internal/urlutils"
)

// Filesystem operations used by Rollback, replaceable in tests
var (
	lstat     = os.Lstat
	removeAll = os.RemoveAll
)

// State is the lifecycle position of a Step.
type State int

const (
	StateNotStarted State = iota
	StateProvisioning
	StateFetching
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateProvisioning:
		return "provisioning"
	case StateFetching:
		return "fetching"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrStepConsumed is returned by DoImport on a step that has already run.
var ErrStepConsumed = stderrors.New("import step already used")

// Target names the repository being imported.
type Target struct {
	Organisation string
	Repository   string
}

func (t Target) String() string {
	return t.Organisation + "/" + t.Repository
}

// Step imports one repository. A step runs at most once; create a new one
// from the Factory to try again.
type Step struct {
	deps   Deps
	target Target
	path   string

	mu    sync.Mutex
	state State
	// created is set once this step may have written to path.
	created bool
}

// State returns the current lifecycle state.
func (s *Step) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Step) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Target returns the organisation and repository being imported.
func (s *Step) Target() Target {
	return s.target
}

// Path returns the local destination directory.
func (s *Step) Path() string {
	return s.path
}

// ProjectName returns "organisation/repository".
func (s *Step) ProjectName() string {
	return s.target.String()
}

// DoImport creates the remote project and then mirrors the source into the
// destination path. tracker may be nil.
//
// On failure the step is left in StateFailed with whatever it wrote still on
// disk; call Rollback to remove it. The remote project is never removed.
func (s *Step) DoImport(ctx context.Context, tracker progress.Tracker) error {
	s.mu.Lock()
	if s.state != StateNotStarted {
		s.mu.Unlock()
		return ErrStepConsumed
	}
	s.state = StateProvisioning
	s.mu.Unlock()

	if err := s.provision(ctx, tracker); err != nil {
		s.setState(StateFailed)
		return err
	}

	s.setState(StateFetching)
	if err := s.fetch(ctx, tracker); err != nil {
		s.setState(StateFailed)
		return err
	}

	s.setState(StateSucceeded)
	slog.Info("import completed", slog.String("project", s.ProjectName()), slog.String("path", s.path))
	return nil
}

func (s *Step) provision(ctx context.Context, tracker progress.Tracker) error {
	project := s.ProjectName()
	if tracker != nil {
		tracker.Start("Create project " + project)
	}

	slog.Info("provisioning project", slog.String("project", project), slog.String("identity", s.deps.ImportAccount))
	err := s.deps.Provisioner.CreateProject(ctx, project, s.deps.ImportAccount)
	if err != nil {
		if errors.KindOf(err) == errors.KindUnknown {
			err = errors.NewProvisioningFailed(project, err)
		}
		slog.Error("provisioning failed", slog.String("project", project), slog.Any("error", err))
		if tracker != nil {
			tracker.Error(err)
		}
		return err
	}

	if tracker != nil {
		tracker.Complete()
	}
	return nil
}

func (s *Step) fetch(ctx context.Context, tracker progress.Tracker) error {
	source, err := s.deps.Sources.SourceURI(ctx, s.target.Organisation, s.target.Repository)
	if err != nil {
		return s.fetchFailed(tracker, errors.NewCloneFailed("", s.path, fmt.Errorf("failed to resolve source: %w", err)))
	}

	auth, err := s.deps.Credentials.Credentials(ctx)
	if err != nil {
		return s.fetchFailed(tracker, errors.NewCloneFailed(source, s.path, fmt.Errorf("failed to get credentials: %w", err)))
	}

	if err := s.deps.Fetcher.InitShell(s.path); err != nil {
		if !errors.IsAlreadyExists(err) {
			s.markCreated()
		}
		return s.fetchFailed(tracker, s.asCloneFailed(source, err))
	}
	s.markCreated()

	opts := git.FetchOptions{Path: s.path, SourceURI: source, Auth: auth}
	var sideband *progress.SidebandWriter
	if tracker != nil {
		sideband = progress.NewSidebandWriter(tracker)
		opts.Progress = sideband
	}

	slog.Info("clone into", slog.String("source", urlutils.SanitizeURL(source)), slog.String("path", s.path))
	if err := s.deps.Fetcher.Fetch(ctx, opts); err != nil {
		err = s.asCloneFailed(source, err)
		if sideband != nil {
			sideband.Fail(err)
		}
		return s.fetchFailed(nil, err)
	}

	if sideband != nil {
		sideband.Flush()
	}
	return nil
}

// asCloneFailed keeps import errors as they are and files anything else
// under CloneFailed.
func (s *Step) asCloneFailed(source string, err error) error {
	if errors.KindOf(err) != errors.KindUnknown {
		return err
	}
	return errors.NewCloneFailed(source, s.path, err)
}

func (s *Step) fetchFailed(tracker progress.Tracker, err error) error {
	var ie *errors.ImportError
	attrs := []any{slog.String("project", s.ProjectName()), slog.String("path", s.path), slog.Any("error", err)}
	if stderrors.As(err, &ie) && ie.SourceURI != "" {
		attrs = append(attrs, slog.String("source", urlutils.SanitizeURL(ie.SourceURI)))
	}
	slog.Error("fetch failed", attrs...)
	if tracker != nil {
		tracker.Error(err)
	}
	return err
}

func (s *Step) markCreated() {
	s.mu.Lock()
	s.created = true
	s.mu.Unlock()
}

// Rollback removes the destination directory written by this step. It
// returns true only if a directory was removed by this call; it never
// touches the remote project and may be called any number of times.
func (s *Step) Rollback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.created {
		return false
	}
	if _, err := lstat(s.path); err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to inspect destination", slog.String("project", s.ProjectName()),
				slog.String("path", s.path), slog.Any("error", err))
		}
		return false
	}
	if err := removeAll(s.path); err != nil {
		slog.Error("failed to remove destination", slog.String("project", s.ProjectName()),
			slog.String("path", s.path), slog.Any("error", err))
		return false
	}

	slog.Info("destination removed", slog.String("project", s.ProjectName()), slog.String("path", s.path))
	return true
}
