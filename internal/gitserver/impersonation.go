package gitserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/OpenCSGs/gitea-go-sdk/gitea"
)

// Impersonator opens API sessions that act as another user, authenticated by
// an admin token and the server's Sudo header.
type Impersonator struct {
	url        string
	adminToken string
	httpClient *http.Client
}

// Session is an API client bound to one acting identity. Close must be called
// on every exit path; after Close the session is unusable.
type Session struct {
	client   *gitea.Client
	identity string
}

// OpenAs returns a session acting as identity. Building the client performs
// the server version handshake, so an unreachable server fails here.
func (i *Impersonator) OpenAs(ctx context.Context, identity string) (*Session, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, fmt.Errorf("acting identity cannot be empty")
	}

	opts := []gitea.ClientOption{
		gitea.SetToken(i.adminToken),
		gitea.SetSudo(identity),
		gitea.SetContext(ctx),
	}
	if i.httpClient != nil {
		opts = append(opts, gitea.SetHTTPClient(i.httpClient))
	}

	client, err := gitea.NewClient(i.url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to act as %s: %w", identity, err)
	}
	return &Session{client: client, identity: identity}, nil
}

// Client returns the underlying API client, or nil once the session is closed.
func (s *Session) Client() *gitea.Client {
	return s.client
}

// Identity returns the user the session acts as.
func (s *Session) Identity() string {
	return s.identity
}

// Close drops the acting identity. Calling it more than once is harmless.
func (s *Session) Close() {
	if s.client == nil {
		return
	}
	s.client.SetSudo("")
	s.client = nil
}
