// Package token supplies the transport credentials attached to a source fetch.
//
// Tokens are read from GIT_TOKEN_<KEY> environment variables in production and
// from memory in tests. A variable may hold the bare token or a JSON document
// carrying expiry and scope metadata:
//
//	export GIT_TOKEN_GITHUB=ghp_abc...
//	export GIT_TOKEN_GITHUB='{"Value":"ghp_abc...","Scope":"repo"}'
package token

import (
	"context"
	"errors"
	"time"
)

// Common errors that may be returned by token operations
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenInvalid  = errors.New("token is invalid")
	ErrTokenExpired  = errors.New("token has expired")
)

// Token represents an authentication token with metadata
type Token struct {
	Value string `json:"Value"`

	// ExpiresAt indicates when the token will expire.
	// Zero value means the token does not expire.
	ExpiresAt time.Time `json:"ExpiresAt"`

	// Scope is the comma separated permission list granted to this token
	Scope string `json:"Scope"`

	CreatedAt time.Time `json:"CreatedAt"`
}

// NewToken creates a new token with validation
func NewToken(value string, expiresAt time.Time, scope string) (*Token, error) {
	t := &Token{
		Value:     value,
		ExpiresAt: expiresAt,
		Scope:     scope,
		CreatedAt: time.Now(),
	}
	if !IsValid(*t) {
		return nil, ErrTokenInvalid
	}
	return t, nil
}

// Storage defines where tokens are read from
type Storage interface {
	// Retrieve gets a token by its key.
	// Returns ErrTokenNotFound if absent and ErrTokenExpired if expired.
	Retrieve(ctx context.Context, key string) (Token, error)
}

// Validator checks a token against its issuer
type Validator interface {
	Validate(ctx context.Context, token *Token) error
}

// ProviderValidator picks the validator for the provider that issued a
// token. Returning nil skips validation.
type ProviderValidator func(Provider) Validator

// Validate implements Validator
func (f ProviderValidator) Validate(ctx context.Context, token *Token) error {
	if v := f(DetectProvider(token.Value)); v != nil {
		return v.Validate(ctx, token)
	}
	return nil
}

// IsExpired checks if a token has expired
func IsExpired(token Token) bool {
	if token.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(token.ExpiresAt)
}

// IsValid performs basic validation of a token
func IsValid(token Token) bool {
	return token.Value != ""
}
