// Package storage provides the persistence boundary for the wallet secret
// store: a small key-value contract over named slots, with interchangeable
// memory, file and postgres backends.
//
// The secret store only ever touches host storage through this package. A
// store may be disabled (for example when the surrounding application is not
// running in an interactive client context); a disabled store answers every
// Get with no data and turns every Set/Remove into a no-op instead of
// returning errors, so callers degrade to empty results rather than failing.
package storage

import "context"

// Slot names for the three logical storage slots. Values are JSON-encoded
// UTF-8 byte strings. The names are part of the persisted format and must not
// change.
const (
	// SlotLegacyWallet holds a single serialized wallet record from the
	// pre-collection era. Kept readable by old clients after migration.
	SlotLegacyWallet = "legacy-wallet"

	// SlotWalletCollection holds the serialized multi-wallet collection.
	SlotWalletCollection = "wallet-collection"

	// SlotActivePointer holds the plaintext active address, mirroring the
	// collection's activeAddress for cheap reads.
	SlotActivePointer = "active-wallet-pointer"
)

// Store is the persistence contract for named byte-string slots.
type Store interface {
	// Get returns the value stored under slot, or nil if the slot is empty
	// or the store is disabled.
	Get(ctx context.Context, slot string) ([]byte, error)

	// Set stores value under slot. No-op when the store is disabled.
	Set(ctx context.Context, slot string, value []byte) error

	// Remove deletes the slot. No-op when the store is disabled or the slot
	// is already empty.
	Remove(ctx context.Context, slot string) error

	// Available reports whether the store can actually persist data.
	// When false, all operations are benign no-ops.
	Available() bool
}
