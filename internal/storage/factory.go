package storage

import (
	"fmt"

	"github.com/spinvault/spinvault/internal/config"
)

// NewFromConfig builds the store selected by cfg.StorageBackend. The postgres
// backend opens a connection pool; callers own closing it.
func NewFromConfig(cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendFile:
		return NewFileStore(cfg.StorageFile)
	case config.BackendPostgres:
		return NewPostgresStore(cfg.PostgresDSN, cfg.Namespace)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.StorageBackend)
	}
}
