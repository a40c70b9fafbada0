package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Documents implementation. It backs tests and
// single-binary runs without a Redis instance.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory creates an empty in-memory document store
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

// Load returns the snapshot stored at key, if any
func (m *Memory) Load(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

// Save replaces the snapshot stored at key
func (m *Memory) Save(ctx context.Context, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.docs[key] = cp
	m.mu.Unlock()
	return nil
}

// Len reports how many documents the store holds
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Delete removes the snapshot stored at key; deleting a missing key is a no-op
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.docs, key)
	m.mu.Unlock()
	return nil
}
