package git

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/samber/lo"

	"github.com/NicabarNimble/go-gitimport/internal/errors"
	"github.com/NicabarNimble/go-gitimport/internal/urlutils"
)

// MirrorRefSpec copies every ref of the source to the same name locally,
// overwriting on non-fast-forward.
const MirrorRefSpec = config.RefSpec("+refs/*:refs/*")

// FetchOptions describes one mirror fetch.
type FetchOptions struct {
	// Path is the local bare repository, already created by InitShell.
	Path      string
	SourceURI string
	// Auth may be nil for anonymous access.
	Auth transport.AuthMethod
	// Progress receives the remote's sideband messages. May be nil.
	Progress io.Writer
}

// Executor runs InitShell and MirrorFetch for the importer.
type Executor struct{}

// InitShell implements the importer's fetcher.
func (Executor) InitShell(path string) error {
	return InitShell(path)
}

// Fetch implements the importer's fetcher.
func (Executor) Fetch(ctx context.Context, opts FetchOptions) error {
	return MirrorFetch(ctx, opts)
}

// InitShell creates an empty bare repository at path. The directory itself is
// created exclusively: if anything already exists at path the result is an
// AlreadyExists error and nothing on disk is touched.
func InitShell(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewCloneFailed("", path, fmt.Errorf("failed to create parent directory: %w", err))
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		if os.IsExist(err) {
			return errors.NewAlreadyExists(projectFromPath(path), path)
		}
		return errors.NewCloneFailed("", path, fmt.Errorf("failed to create repository directory: %w", err))
	}

	if _, err := git.PlainInit(path, true); err != nil {
		return errors.NewCloneFailed("", path, fmt.Errorf("failed to initialise repository: %w", err))
	}
	return nil
}

// MirrorFetch fetches every ref of opts.SourceURI into the repository at
// opts.Path. An up-to-date or empty source is not an error.
func MirrorFetch(ctx context.Context, opts FetchOptions) error {
	cloneFailed := func(err error) error {
		return errors.NewCloneFailed(opts.SourceURI, opts.Path, err)
	}

	if opts.SourceURI == "" {
		return cloneFailed(fmt.Errorf("source uri must be specified"))
	}

	repo, err := git.PlainOpen(opts.Path)
	if err != nil {
		return cloneFailed(fmt.Errorf("failed to open repository: %w", err))
	}

	remote, err := repo.CreateRemoteAnonymous(&config.RemoteConfig{
		Name: "anonymous",
		URLs: []string{opts.SourceURI},
	})
	if err != nil {
		return cloneFailed(fmt.Errorf("invalid source: %w", err))
	}

	slog.Debug("fetching mirror",
		slog.String("source", urlutils.SanitizeURL(opts.SourceURI)),
		slog.String("path", opts.Path),
		slog.Bool("auth", opts.Auth != nil))

	err = remote.FetchContext(ctx, &git.FetchOptions{
		RefSpecs: []config.RefSpec{MirrorRefSpec},
		Auth:     opts.Auth,
		Progress: opts.Progress,
		Tags:     git.NoTags,
	})
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, git.NoErrAlreadyUpToDate):
		return nil
	case stderrors.Is(err, transport.ErrEmptyRemoteRepository):
		slog.Info("source repository is empty", slog.String("source", urlutils.SanitizeURL(opts.SourceURI)))
		return nil
	default:
		return cloneFailed(err)
	}
}

// ListRefs returns every ref under refs/ in the repository at path, mapped
// to the hash it points at.
func ListRefs(path string) (map[string]string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}

	iter, err := repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	defer iter.Close()

	refs := make(map[string]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() == plumbing.HashReference && strings.HasPrefix(ref.Name().String(), "refs/") {
			refs[ref.Name().String()] = ref.Hash().String()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	return refs, nil
}

// RefNames returns the names in refs, sorted.
func RefNames(refs map[string]string) []string {
	names := lo.Keys(refs)
	slices.Sort(names)
	return names
}

// MissingRefs returns the refs of want that are absent from got or point
// elsewhere, sorted.
func MissingRefs(want, got map[string]string) []string {
	return lo.Filter(RefNames(want), func(name string, _ int) bool {
		return got[name] != want[name]
	})
}

// projectFromPath recovers "org/repo" from <root>/<org>/<repo>.git.
func projectFromPath(path string) string {
	repo := strings.TrimSuffix(filepath.Base(path), ".git")
	return filepath.Base(filepath.Dir(path)) + "/" + repo
}
