package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryBackend is a simple in-memory backend used by unit tests.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string]json.RawMessage)}
}

func (m *MemoryBackend) Read(_ context.Context, name string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	out := make(json.RawMessage, len(d))
	copy(out, d)
	return out, nil
}

func (m *MemoryBackend) Write(_ context.Context, name string, data json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(json.RawMessage, len(data))
	copy(cp, data)
	m.docs[name] = cp
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }
