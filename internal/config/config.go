// Package config handles application configuration loading and management.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig
	Cache  CacheConfig
	DocDB  DocDBConfig
	Vault  VaultConfig
	Log    LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host           string
	Port           int
	GinMode        string
	AllowedOrigins []string
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds cache-related configuration.
type CacheConfig struct {
	Type      string
	Host      string
	Port      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string

	// EncryptionKey seals cached documents when set.
	EncryptionKey string
}

// DocDBConfig holds document database configuration.
type DocDBConfig struct {
	Type string

	// MongoDB
	URI      string
	Database string

	// Firestore
	ProjectID       string
	DatabaseID      string
	CredentialsFile string
}

// VaultConfig holds vault configuration.
type VaultConfig struct {
	Type string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// SecretResolver resolves secret references such as "dotenv://KEY".
type SecretResolver interface {
	Resolve(ctx context.Context, value string) (string, error)
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			GinMode:        getEnv("GIN_MODE", "debug"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		},
		Cache: CacheConfig{
			Type:      getEnv("CACHE_TYPE", "redis"),
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			TTL:       time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 180)) * time.Second,
			KeyPrefix: getEnv("CACHE_KEY_PREFIX", "docdb"),

			EncryptionKey: getEnv("CACHE_ENCRYPTION_KEY", ""),
		},
		DocDB: DocDBConfig{
			Type:            getEnv("DOCDB_TYPE", "mongodb"),
			URI:             getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:        getEnv("MONGODB_DATABASE", "typeddocdb"),
			ProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
			DatabaseID:      getEnv("FIRESTORE_DATABASE_ID", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Vault: VaultConfig{
			Type: getEnv("VAULT_TYPE", "dotenv"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.DocDB.Type == "firestore" && c.DocDB.ProjectID == "" {
		return fmt.Errorf("FIRESTORE_PROJECT_ID is required when DOCDB_TYPE is firestore")
	}
	return nil
}

// ResolveSecrets replaces secret references in connection settings with the
// values they point to.
func (c *Config) ResolveSecrets(ctx context.Context, resolver SecretResolver) error {
	fields := []*string{
		&c.Cache.Password,
		&c.Cache.EncryptionKey,
		&c.DocDB.URI,
		&c.DocDB.CredentialsFile,
	}
	for _, field := range fields {
		value, err := resolver.Resolve(ctx, *field)
		if err != nil {
			return fmt.Errorf("failed to resolve secret: %w", err)
		}
		*field = value
	}
	return nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList gets a comma separated environment variable as a list.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
