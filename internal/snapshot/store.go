// Package snapshot provides full-read/full-overwrite persistence for the
// sandbox's logical datasets. Each key maps to one JSON document; writers
// always replace the whole document, so readers never observe a partial
// update regardless of backend.
package snapshot

import (
	"context"
	"sync"
)

// Well-known snapshot keys.
const (
	KeyMarket    = "sandbox_market"
	KeyPlayer    = "sandbox_player"
	KeyContracts = "sandbox_contracts"
)

// Store is a keyed snapshot store. Load returns (nil, nil) when the key has
// never been written; callers treat that as "start fresh".
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process Store used by tests and throwaway sessions.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[key] = cp
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
