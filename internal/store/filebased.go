package store

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists each subject as one JSON file under a root directory.
// Keys are escaped into safe file names, so arbitrary key strings (session
// ids, slashes and all) round-trip without colliding with path separators.
type FileStore struct {
	mu   sync.RWMutex
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory %q: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

func (f *FileStore) Get(key string, v interface{}) error {
	f.mu.RLock()
	raw, err := os.ReadFile(f.path(key))
	f.mu.RUnlock()

	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("reading subject %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding subject %q: %w", key, err)
	}
	return nil
}

func (f *FileStore) Set(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding subject %q: %w", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Write-then-rename keeps readers from observing partial subjects.
	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("writing subject %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("committing subject %q: %w", key, err)
	}
	return nil
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	err := os.Remove(f.path(key))
	f.mu.Unlock()

	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting subject %q: %w", key, err)
	}
	return nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.root, url.QueryEscape(key)+".json")
}
