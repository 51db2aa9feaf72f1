// Package gitlab checks source credentials issued by a GitLab instance.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/NicabarNimble/go-gitimport/internal/token"
)

const (
	// DefaultAPIURL is the REST endpoint of gitlab.com
	DefaultAPIURL = "https://gitlab.com/api/v4"
	userAgent     = "go-gitimport"
)

// fetchScopes are the scopes that allow a mirror fetch over HTTPS.
var fetchScopes = []string{"read_repository", "api"}

// TokenValidator implements token.Validator for GitLab tokens
type TokenValidator struct {
	baseURL string
	client  *http.Client
}

// NewTokenValidator creates a validator against baseURL (empty for gitlab.com).
func NewTokenValidator(baseURL string) *TokenValidator {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &TokenValidator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  http.DefaultClient,
	}
}

// Validate checks that the token is accepted by GitLab and can read
// repositories. The scopes reported by GitLab are written into t.Scope.
func (v *TokenValidator) Validate(ctx context.Context, t *token.Token) error {
	if t.Value == "" {
		return token.ErrTokenInvalid
	}
	if token.IsExpired(*t) {
		return token.ErrTokenExpired
	}

	scopes, err := v.verifyToken(ctx, t.Value)
	if err != nil {
		return fmt.Errorf("token verification failed: %w", err)
	}
	t.Scope = strings.Join(scopes, ",")

	// tokens predating the scopes header are personal tokens with api access
	if len(scopes) == 0 || lo.Some(scopes, fetchScopes) {
		return nil
	}
	return &token.ScopeError{
		Missing: fetchScopes[:1],
		Status:  lo.Associate(fetchScopes, func(s string) (string, bool) { return s, false }),
	}
}

// verifyToken calls /user with the token and returns the granted scopes.
func (v *TokenValidator) verifyToken(ctx context.Context, value string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("PRIVATE-TOKEN", value)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorResp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil || errorResp.Message == "" {
			return nil, fmt.Errorf("invalid token: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("invalid token: %s", errorResp.Message)
	}

	header := resp.Header.Get("X-Gitlab-Scopes")
	scopes := lo.FilterMap(strings.Split(header, ","), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	return scopes, nil
}
