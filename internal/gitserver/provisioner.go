// Package gitserver creates projects on the destination git server.
package gitserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/OpenCSGs/gitea-go-sdk/gitea"

	"github.com/NicabarNimble/go-gitimport/internal/errors"
)

// ProvisionerConfig locates the destination server.
type ProvisionerConfig struct {
	URL     string
	Token   string // admin token, used together with Sudo
	Timeout time.Duration
}

// Option customises a Provisioner
type Option func(*Provisioner)

// WithHTTPClient sets the http.Client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Provisioner) {
		p.sessions.httpClient = hc
	}
}

// Provisioner registers imported repositories as private projects on the
// destination server.
type Provisioner struct {
	sessions *Impersonator
}

// NewProvisioner creates a Provisioner for the server described by cfg.
func NewProvisioner(cfg ProvisionerConfig, opts ...Option) *Provisioner {
	p := &Provisioner{
		sessions: &Impersonator{
			url:        strings.TrimSuffix(cfg.URL, "/"),
			adminToken: cfg.Token,
		},
	}
	if cfg.Timeout > 0 {
		p.sessions.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateProject creates projectName ("organisation/repository") acting as
// identity. A project that already exists is reported as AlreadyExists; any
// other failure, including failing to act as identity, is ProvisioningFailed.
// A project created here is never deleted by this package.
func (p *Provisioner) CreateProject(ctx context.Context, projectName, identity string) error {
	org, name, ok := strings.Cut(projectName, "/")
	if !ok || org == "" || name == "" || strings.Contains(name, "/") {
		return errors.NewProvisioningFailed(projectName,
			fmt.Errorf("invalid project name %q, expected 'organisation/repository'", projectName))
	}

	session, err := p.sessions.OpenAs(ctx, identity)
	if err != nil {
		slog.Error("failed to open git server session",
			slog.String("project", projectName), slog.String("identity", identity), slog.Any("error", err))
		return errors.NewProvisioningFailed(projectName, errors.NewAPIError("open session", "cannot act as "+identity, err))
	}
	defer session.Close()

	slog.Info("creating project", slog.String("project", projectName), slog.String("identity", identity))
	repo, resp, err := session.Client().CreateOrgRepo(org, gitea.CreateRepoOption{
		Name:    name,
		Private: true,
	})
	if err != nil {
		status := 0
		if resp != nil && resp.Response != nil {
			status = resp.StatusCode
		}
		apiErr := errors.NewAPIHTTPError("create project", status, err.Error(), err)
		if errors.IsConflict(apiErr) {
			slog.Warn("project already exists", slog.String("project", projectName))
			dup := errors.NewAlreadyExists(projectName, "")
			dup.Err = apiErr
			return dup
		}
		if errors.IsNotFound(apiErr) {
			slog.Error("organisation not found on git server",
				slog.String("project", projectName), slog.String("organisation", org))
			return errors.NewProvisioningFailed(projectName, apiErr)
		}
		slog.Error("fail to call git server to create project",
			slog.String("project", projectName), slog.Int("status", status), slog.Any("error", err))
		return errors.NewProvisioningFailed(projectName, apiErr)
	}

	slog.Info("project created", slog.String("project", projectName), slog.String("full_name", repo.FullName))
	return nil
}
