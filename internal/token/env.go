package token

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// EnvPrefix is the prefix used for all token environment variables
	EnvPrefix = "GIT_TOKEN_"
)

// EnvStorage implements Storage using environment variables. The CLI reads
// source credentials through it.
type EnvStorage struct{}

// NewEnvStorage creates a new environment variable-based token storage
func NewEnvStorage() *EnvStorage {
	return &EnvStorage{}
}

// Retrieve reads the token for key. Plain values are accepted as tokens
// without metadata; values starting with '{' are decoded as JSON.
func (e *EnvStorage) Retrieve(_ context.Context, key string) (Token, error) {
	raw, ok := os.LookupEnv(FormatEnvKey(key))
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return Token{}, ErrTokenNotFound
	}

	if !strings.HasPrefix(raw, "{") {
		token, err := NewToken(raw, time.Time{}, "")
		if err != nil {
			return Token{}, err
		}
		return *token, nil
	}

	var token Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return Token{}, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	if !IsValid(token) {
		return Token{}, ErrTokenInvalid
	}
	if IsExpired(token) {
		return Token{}, ErrTokenExpired
	}
	return token, nil
}

// FormatEnvKey converts a token key into an environment variable name
func FormatEnvKey(key string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, strings.ToUpper(key))

	return EnvPrefix + sanitized
}
