// Package store provides durable keyed storage of JSON-serialized subjects.
// Subjects are written and read whole; a Set of a full subject is the only
// consistency boundary the callers rely on (last writer wins).
package store

import (
	"errors"
	"fmt"

	"github.com/procsight/procsight/internal/config"
)

var ErrNotFound = errors.New("subject not found")

// Store maps string keys to JSON-serialized subjects.
type Store interface {
	// Get unmarshals the subject stored under key into v.
	// Returns ErrNotFound when no subject exists.
	Get(key string, v interface{}) error
	// Set marshals v and stores it under key, replacing any prior subject.
	Set(key string, v interface{}) error
	// Delete removes the subject under key. Deleting an absent key is a no-op.
	Delete(key string) error
}

// New builds the store backend selected by the configuration.
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageFile:
		return NewFileStore(cfg.Directory)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStorageBackend, cfg.Backend)
	}
}
