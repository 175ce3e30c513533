package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store implementation. It backs tests and
// short-lived tooling; nothing survives process exit.
type MemoryStore struct {
	mu       sync.RWMutex
	slots    map[string][]byte
	disabled bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		slots: make(map[string][]byte),
	}
}

// NewDisabledStore creates a store with the availability guard down, modelling
// a non-interactive host context. All operations are no-ops.
func NewDisabledStore() *MemoryStore {
	return &MemoryStore{
		slots:    make(map[string][]byte),
		disabled: true,
	}
}

// Get returns the value stored under slot, or nil.
func (s *MemoryStore) Get(_ context.Context, slot string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.disabled {
		return nil, nil
	}

	value, ok := s.slots[slot]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value under slot.
func (s *MemoryStore) Set(_ context.Context, slot string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disabled {
		return nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.slots[slot] = stored
	return nil
}

// Remove deletes the slot.
func (s *MemoryStore) Remove(_ context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disabled {
		return nil
	}

	delete(s.slots, slot)
	return nil
}

// Available reports whether the store persists data.
func (s *MemoryStore) Available() bool {
	return !s.disabled
}
