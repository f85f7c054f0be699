// Package dotenv provides a dotenv-based vault implementation for development.
package dotenv

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/unifiedui/typed-docdb/internal/core/vault"
)

// Scheme prefixes every secret reference handled by this vault.
const Scheme = "dotenv://"

// Vault implements vault.Vault using environment variables, falling back to
// an in-memory store for secrets written at runtime.
type Vault struct {
	secrets map[string]string
	mu      sync.RWMutex
}

// NewVault creates a new DotEnv vault instance.
func NewVault() *Vault {
	return &Vault{
		secrets: make(map[string]string),
	}
}

// StoreSecret stores a secret in memory and returns its "dotenv://{key}" URI.
func (v *Vault) StoreSecret(_ context.Context, key string, value string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.secrets[key] = value
	return Scheme + key, nil
}

// GetSecret retrieves a secret from environment variables or the in-memory store.
func (v *Vault) GetSecret(_ context.Context, uri string) (string, error) {
	key := strings.TrimPrefix(uri, Scheme)

	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if value, ok := v.secrets[key]; ok {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", vault.ErrSecretNotFound, key)
}

// DeleteSecret deletes a secret from memory.
func (v *Vault) DeleteSecret(_ context.Context, uri string) (bool, error) {
	key := strings.TrimPrefix(uri, Scheme)

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.secrets[key]; ok {
		delete(v.secrets, key)
		return true, nil
	}
	return false, nil
}

// Resolve looks up "dotenv://" references and passes other values through.
func (v *Vault) Resolve(ctx context.Context, value string) (string, error) {
	if !strings.HasPrefix(value, Scheme) {
		return value, nil
	}
	return v.GetSecret(ctx, value)
}

// Ping always succeeds.
func (v *Vault) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (v *Vault) Close() error {
	return nil
}
