// Package app assembles the secret store from configuration: the logger, the
// storage backend, and the wallet collection manager. The surrounding
// application embeds the store as a library; this is its single entry point.
package app

import (
	"fmt"

	"github.com/spinvault/spinvault/internal/config"
	"github.com/spinvault/spinvault/internal/keychain"
	"github.com/spinvault/spinvault/internal/keystore"
	"github.com/spinvault/spinvault/internal/logger"
	"github.com/spinvault/spinvault/internal/storage"
)

// App is a fully wired secret store instance.
type App struct {
	Config  *config.Config
	Store   storage.Store
	Manager *keystore.Manager
}

// New loads configuration from the environment and wires a store instance.
func New(opts ...keystore.Option) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, opts...)
}

// NewWithConfig wires a store instance from a validated configuration.
func NewWithConfig(cfg *config.Config, opts ...keystore.Option) (*App, error) {
	if err := logger.Init(cfg.LogFormat, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}

	store, err := storage.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}

	return &App{
		Config:  cfg,
		Store:   store,
		Manager: keystore.NewManager(store, keychain.NewCryptoRandom(), opts...),
	}, nil
}

// Close releases backend resources held by the store.
func (a *App) Close() {
	if closer, ok := a.Store.(interface{ Close() }); ok {
		closer.Close()
	}
}
