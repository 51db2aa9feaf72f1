package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NicabarNimble/go-gitimport/internal/token"
)

// ScopeRepo grants read access to private repositories
const ScopeRepo = "repo"

// TokenValidator implements token.Validator for GitHub tokens
type TokenValidator struct {
	apiURL string
	opts   []Option
}

// NewTokenValidator creates a validator against apiURL (empty for github.com).
func NewTokenValidator(apiURL string, opts ...Option) *TokenValidator {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &TokenValidator{apiURL: apiURL, opts: opts}
}

// Validate checks that the token is accepted by GitHub and, for classic
// tokens, that it carries the repo scope. Scope and expiry reported by GitHub
// are written back into t.
func (v *TokenValidator) Validate(ctx context.Context, t *token.Token) error {
	if t.Value == "" {
		return token.ErrTokenInvalid
	}
	if token.IsExpired(*t) {
		return token.ErrTokenExpired
	}

	client, err := NewClient(ctx, t.Value, append([]Option{WithBaseURL(v.apiURL)}, v.opts...)...)
	if err != nil {
		return err
	}

	_, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		return fmt.Errorf("token verification failed: %w", err)
	}

	// GitHub returns time in format "2025-03-04 02:13:04 UTC"
	if expStr := resp.Header.Get("GitHub-Authentication-Token-Expiration"); expStr != "" {
		expTime, err := time.Parse("2006-01-02 15:04:05 MST", expStr)
		if err != nil {
			return fmt.Errorf("failed to parse token expiration: %w", err)
		}
		t.ExpiresAt = expTime
	}

	// fine-grained and app tokens carry no OAuth scopes
	scopes, ok := resp.Header["X-Oauth-Scopes"]
	if !ok {
		return nil
	}
	t.Scope = strings.Join(scopes, ",")
	return validateScopes(t.Scope)
}

func validateScopes(scope string) error {
	present := make(map[string]bool)
	for _, s := range strings.Split(scope, ",") {
		present[strings.TrimSpace(s)] = true
	}
	if present[ScopeRepo] {
		return nil
	}
	return &token.ScopeError{
		Missing: []string{ScopeRepo},
		Status:  map[string]bool{ScopeRepo: false},
	}
}
