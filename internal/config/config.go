package config

import (
	"fmt"
	"os"
	"strings"
)

// Storage backend names
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds infrastructure-level configuration for the secret store.
// Cryptographic parameters (KDF iterations, key sizes) are fixed by the
// persisted record format and are deliberately not configurable.
type Config struct {
	// Storage
	StorageBackend string
	StorageFile    string
	PostgresDSN    string
	Namespace      string

	// Logging
	LogFormat string
	LogLevel  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		StorageBackend: getEnv("STORAGE_BACKEND", BackendFile),
		StorageFile:    getEnv("STORAGE_FILE_PATH", ""),
		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		Namespace:      getEnv("STORAGE_NAMESPACE", "spinvault"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendFile:
		if c.StorageFile == "" {
			return fmt.Errorf("STORAGE_FILE_PATH is required when STORAGE_BACKEND is 'file'")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORAGE_BACKEND is 'postgres'")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be 'memory', 'file' or 'postgres', got: %s", c.StorageBackend)
	}

	if c.Namespace == "" {
		return fmt.Errorf("STORAGE_NAMESPACE cannot be empty")
	}
	if strings.ContainsAny(c.Namespace, " \t\n") {
		return fmt.Errorf("STORAGE_NAMESPACE cannot contain whitespace: %q", c.Namespace)
	}

	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
