package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps serialized subjects in a map. Storing bytes rather than
// live pointers means every Get hands back an independent copy, so concurrent
// readers and writers only interact through whole-subject Set calls.
type MemoryStore struct {
	mu       sync.RWMutex
	subjects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subjects: make(map[string][]byte),
	}
}

func (m *MemoryStore) Get(key string, v interface{}) error {
	m.mu.RLock()
	raw, ok := m.subjects[key]
	m.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding subject %q: %w", key, err)
	}
	return nil
}

func (m *MemoryStore) Set(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding subject %q: %w", key, err)
	}

	m.mu.Lock()
	m.subjects[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.subjects, key)
	m.mu.Unlock()
	return nil
}
