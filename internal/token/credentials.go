package token

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// CredentialsProvider turns a stored token into go-git transport credentials.
type CredentialsProvider struct {
	Storage Storage
	Key     string

	// Validator, when set, checks the token with its issuer before use.
	Validator Validator

	// AllowAnonymous returns nil credentials instead of ErrTokenNotFound,
	// for public sources.
	AllowAnonymous bool

	once      sync.Once
	validated *MemoryStorage
}

// Credentials implements the importer's credential source. A token is
// validated once and reused until it expires.
func (p *CredentialsProvider) Credentials(ctx context.Context) (transport.AuthMethod, error) {
	t, err := p.token(ctx)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) && p.AllowAnonymous {
			return nil, nil
		}
		return nil, err
	}

	return &http.BasicAuth{
		Username: basicAuthUser(DetectProvider(t.Value)),
		Password: t.Value,
	}, nil
}

func (p *CredentialsProvider) token(ctx context.Context) (Token, error) {
	p.once.Do(func() { p.validated = NewMemoryStorage(nil) })

	t, err := p.validated.Retrieve(ctx, p.Key)
	switch {
	case err == nil:
		return t, nil
	case errors.Is(err, ErrTokenExpired):
		_ = p.validated.Delete(ctx, p.Key)
	}

	t, err = p.Storage.Retrieve(ctx, p.Key)
	if err != nil {
		return Token{}, fmt.Errorf("failed to get %s token: %w", p.Key, err)
	}

	if p.Validator != nil {
		if err := p.Validator.Validate(ctx, &t); err != nil {
			return Token{}, fmt.Errorf("%s token validation failed: %w", p.Key, err)
		}
	}

	if err := p.validated.Store(ctx, p.Key, t); err != nil {
		return Token{}, err
	}
	return t, nil
}
