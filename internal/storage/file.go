package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists slots as a single JSON document on disk. The whole file
// is rewritten on every mutation, mirroring the full load/save cycle the
// secret store performs at the collection level.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// fileDocument is the on-disk shape: slot name to raw value bytes
// (base64-encoded by encoding/json).
type fileDocument struct {
	Slots map[string][]byte `json:"slots"`
}

// NewFileStore creates a file-backed store at path. The parent directory must
// exist; the file itself is created on first write with 0600 permissions.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path cannot be empty")
	}
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("file store directory %s: %w", dir, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("file store parent %s is not a directory", dir)
	}
	return &FileStore{path: path}, nil
}

// Get returns the value stored under slot, or nil.
func (s *FileStore) Get(_ context.Context, slot string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Slots[slot], nil
}

// Set stores value under slot.
func (s *FileStore) Set(_ context.Context, slot string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	doc.Slots[slot] = stored
	return s.save(doc)
}

// Remove deletes the slot.
func (s *FileStore) Remove(_ context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Slots[slot]; !ok {
		return nil
	}
	delete(doc.Slots, slot)
	return s.save(doc)
}

// Available reports whether the store persists data.
func (s *FileStore) Available() bool {
	return true
}

func (s *FileStore) load() (*fileDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &fileDocument{Slots: make(map[string][]byte)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}
	if doc.Slots == nil {
		doc.Slots = make(map[string][]byte)
	}
	return &doc, nil
}

func (s *FileStore) save(doc *fileDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store file: %w", err)
	}

	// Write via a temp file and rename so a crash mid-write cannot leave a
	// truncated document behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
