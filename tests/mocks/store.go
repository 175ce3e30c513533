// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"
)

// RecordingStore is an in-memory store that records every operation, letting
// tests assert on write patterns (mirroring, pointer maintenance) as well as
// final state.
type RecordingStore struct {
	mu    sync.Mutex
	slots map[string][]byte

	// Ops is the ordered trace of operations as "get:slot", "set:slot" or
	// "remove:slot".
	Ops []string

	// FailNext, when set, makes the next operation return this error once.
	FailNext error

	disabled bool
}

// NewRecordingStore creates an empty recording store.
func NewRecordingStore() *RecordingStore {
	return &RecordingStore{slots: make(map[string][]byte)}
}

// Disable flips the availability guard.
func (s *RecordingStore) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled = true
}

// Seed plants a value without recording an operation.
func (s *RecordingStore) Seed(slot string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = append([]byte(nil), value...)
}

// Get returns the value stored under slot, or nil.
func (s *RecordingStore) Get(_ context.Context, slot string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Ops = append(s.Ops, "get:"+slot)
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	if s.disabled {
		return nil, nil
	}
	value, ok := s.slots[slot]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// Set stores value under slot.
func (s *RecordingStore) Set(_ context.Context, slot string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Ops = append(s.Ops, "set:"+slot)
	if err := s.takeFailure(); err != nil {
		return err
	}
	if s.disabled {
		return nil
	}
	s.slots[slot] = append([]byte(nil), value...)
	return nil
}

// Remove deletes the slot.
func (s *RecordingStore) Remove(_ context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Ops = append(s.Ops, "remove:"+slot)
	if err := s.takeFailure(); err != nil {
		return err
	}
	if s.disabled {
		return nil
	}
	delete(s.slots, slot)
	return nil
}

// Available reports whether the store persists data.
func (s *RecordingStore) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.disabled
}

// Value returns the current contents of a slot (nil when empty).
func (s *RecordingStore) Value(slot string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.slots[slot]
	if !ok {
		return nil
	}
	return append([]byte(nil), value...)
}

func (s *RecordingStore) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

// SequenceRandom yields deterministic, call-unique bytes.
type SequenceRandom struct {
	mu    sync.Mutex
	calls int
}

// NewSequenceRandom creates a deterministic randomness source.
func NewSequenceRandom() *SequenceRandom {
	return &SequenceRandom{}
}

// Bytes returns n deterministic bytes, distinct per call.
func (r *SequenceRandom) Bytes(n int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(r.calls*31 + i)
	}
	return buf, nil
}

// FixedFingerprint is a FingerprintProvider returning a constant.
type FixedFingerprint struct {
	FP []byte
}

// Fingerprint returns the configured fingerprint bytes.
func (f *FixedFingerprint) Fingerprint() []byte {
	return f.FP
}
