package token

import (
	"context"
	"sync"
)

// MemoryStorage keeps tokens in a map. CredentialsProvider caches validated
// tokens in one; tests use it in place of the environment.
type MemoryStorage struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

// NewMemoryStorage creates a storage pre-populated with seed.
func NewMemoryStorage(seed map[string]Token) *MemoryStorage {
	m := &MemoryStorage{tokens: make(map[string]Token, len(seed))}
	for k, v := range seed {
		m.tokens[k] = v
	}
	return m
}

// Store saves token under key, replacing any previous one. Expired tokens may be stored.
func (m *MemoryStorage) Store(_ context.Context, key string, token Token) error {
	if !IsValid(token) {
		return ErrTokenInvalid
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[key] = token
	return nil
}

// Retrieve implements Storage.Retrieve
func (m *MemoryStorage) Retrieve(_ context.Context, key string) (Token, error) {
	m.mu.RLock()
	token, ok := m.tokens[key]
	m.mu.RUnlock()

	if !ok {
		return Token{}, ErrTokenNotFound
	}
	if IsExpired(token) {
		return Token{}, ErrTokenExpired
	}
	return token, nil
}

// Delete removes a token; deleting a missing key is not an error
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, key)
	return nil
}
