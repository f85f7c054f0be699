// Package vault defines the secrets port used to resolve connection settings.
package vault

import (
	"context"
	"errors"
)

// Type represents the type of vault.
type Type string

const (
	// TypeDotEnv reads secrets from the process environment (for development).
	TypeDotEnv Type = "dotenv"
)

// ErrSecretNotFound is returned when a secret reference cannot be resolved.
var ErrSecretNotFound = errors.New("secret not found")

// Vault defines the interface for vault/secrets operations.
type Vault interface {
	// StoreSecret stores a secret in the vault.
	// Returns the URI/reference to the stored secret.
	StoreSecret(ctx context.Context, key string, value string) (string, error)

	// GetSecret retrieves a secret from the vault by URI.
	GetSecret(ctx context.Context, uri string) (string, error)

	// DeleteSecret deletes a secret from the vault.
	// Returns true if deleted successfully.
	DeleteSecret(ctx context.Context, uri string) (bool, error)

	// Resolve returns the secret behind value when value is a reference this
	// vault understands, and value unchanged otherwise.
	Resolve(ctx context.Context, value string) (string, error)

	Ping(ctx context.Context) error
	Close() error
}
