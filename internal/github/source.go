package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v81/github"

	"github.com/NicabarNimble/go-gitimport/internal/urlutils"
)

// URLResolver derives the source URI from a fixed base URL, the way the
// web UI lays out repositories: <base>/<org>/<repo>.git.
type URLResolver struct {
	BaseURL string
	Hosts   *urlutils.HostPolicy
}

// SourceURI implements the importer's source resolver.
func (r *URLResolver) SourceURI(_ context.Context, organisation, repository string) (string, error) {
	uri := urlutils.RepositoryURL(r.BaseURL, organisation, repository)
	if _, err := urlutils.ParseHTTPSURL(uri, r.Hosts); err != nil {
		return "", fmt.Errorf("invalid source url %s: %w", uri, err)
	}
	return uri, nil
}

// APIResolver asks the GitHub API for the repository's clone URL. It follows
// renames and transfers, which the fixed layout cannot.
type APIResolver struct {
	Client *Client
}

// ErrSourceNotFound is returned when the source repository does not exist
// or is not visible with the configured credentials.
var ErrSourceNotFound = errors.New("source repository not found")

// SourceURI implements the importer's source resolver.
func (r *APIResolver) SourceURI(ctx context.Context, organisation, repository string) (string, error) {
	repo, _, err := r.Client.Repositories.Get(ctx, organisation, repository)
	if err != nil {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s/%s", ErrSourceNotFound, organisation, repository)
		}
		return "", fmt.Errorf("failed to look up %s/%s: %w", organisation, repository, err)
	}

	cloneURL := repo.GetCloneURL()
	if cloneURL == "" {
		return "", fmt.Errorf("repository %s/%s has no clone url", organisation, repository)
	}
	return cloneURL, nil
}
