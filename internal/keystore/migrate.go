package keystore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spinvault/spinvault/internal/logger"
	"github.com/spinvault/spinvault/internal/storage"
)

// migrateIfNeeded performs the one-time conversion of a legacy single-wallet
// record into the collection format. Idempotent: once the collection slot
// holds data this is a no-op.
//
// The legacy slot is read but never rewritten here. Old clients keep reading
// their record byte-for-byte, and any fields this version doesn't know about
// survive in place. The record is copied into the collection as parsed; it is
// never re-encrypted.
func (m *Manager) migrateIfNeeded(ctx context.Context) error {
	existing, err := m.store.Get(ctx, storage.SlotWalletCollection)
	if err != nil {
		return fmt.Errorf("failed to read wallet collection: %w", err)
	}
	if existing != nil {
		return nil
	}

	legacy, err := m.store.Get(ctx, storage.SlotLegacyWallet)
	if err != nil {
		return fmt.Errorf("failed to read legacy wallet: %w", err)
	}
	if legacy == nil {
		return nil
	}

	record, err := decodeRecord(legacy)
	if err != nil {
		return err
	}

	collection := &WalletCollection{
		Wallets:           []WalletRecord{*record},
		ActiveAddress:     record.PublicData.Address,
		CollectionVersion: 1,
	}

	data, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("failed to marshal migrated collection: %w", err)
	}
	if err := m.store.Set(ctx, storage.SlotWalletCollection, data); err != nil {
		return fmt.Errorf("failed to write migrated collection: %w", err)
	}
	if err := m.store.Set(ctx, storage.SlotActivePointer, []byte(collection.ActiveAddress)); err != nil {
		return fmt.Errorf("failed to write active wallet pointer: %w", err)
	}

	m.metrics.observeMigration()
	logger.Info(ctx, "migrated legacy wallet into collection",
		"address", record.PublicData.Address,
		"format_version", record.FormatVersion,
	)

	return nil
}
