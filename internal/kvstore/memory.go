package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

// NewMemory returns a process-local Store.
func NewMemory() Store {
	return &memoryStore{entries: make(map[string]json.RawMessage)}
}

func (m *memoryStore) GetRaw(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append(json.RawMessage(nil), v...), nil
}

func (m *memoryStore) SetRaw(_ context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid json", key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append(json.RawMessage(nil), value...)
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
