package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists slots in a postgres table, keyed by namespace and
// slot name. It serves deployments that sync wallet blobs across devices;
// the ciphertext stays opaque to the database.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS vault_slots (
//	    namespace  TEXT NOT NULL,
//	    slot       TEXT NOT NULL,
//	    value      BYTEA NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (namespace, slot)
//	);
type PostgresStore struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPostgresStore creates a postgres-backed store scoped to namespace.
func NewPostgresStore(dsn, namespace string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	// Set pool configuration
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool, namespace: namespace}, nil
}

// Close closes the database connection pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Get returns the value stored under slot, or nil.
func (s *PostgresStore) Get(ctx context.Context, slot string) ([]byte, error) {
	query := `
		SELECT value
		FROM vault_slots
		WHERE namespace = $1 AND slot = $2
	`

	var value []byte
	err := s.pool.QueryRow(ctx, query, s.namespace, slot).Scan(&value)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot %s: %w", slot, err)
	}

	return value, nil
}

// Set stores value under slot.
func (s *PostgresStore) Set(ctx context.Context, slot string, value []byte) error {
	query := `
		INSERT INTO vault_slots (namespace, slot, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, slot)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`

	if _, err := s.pool.Exec(ctx, query, s.namespace, slot, value); err != nil {
		return fmt.Errorf("failed to set slot %s: %w", slot, err)
	}

	return nil
}

// Remove deletes the slot.
func (s *PostgresStore) Remove(ctx context.Context, slot string) error {
	query := `
		DELETE FROM vault_slots
		WHERE namespace = $1 AND slot = $2
	`

	if _, err := s.pool.Exec(ctx, query, s.namespace, slot); err != nil {
		return fmt.Errorf("failed to remove slot %s: %w", slot, err)
	}

	return nil
}

// Available reports whether the store persists data.
func (s *PostgresStore) Available() bool {
	return true
}
