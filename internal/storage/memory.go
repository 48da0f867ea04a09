package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fjod/storefront/internal/domain"
)

// MemoryStorage holds encoded carts in process memory. Payloads are kept as
// JSON so a round trip behaves like the Redis backend.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(_ context.Context, key string) (*domain.CartState, error) {
	m.mu.RLock()
	data, ok := m.carts[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeCart(data)
}

func (m *MemoryStorage) Save(_ context.Context, key string, state domain.CartState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	m.mu.Lock()
	m.carts[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.carts, key)
	m.mu.Unlock()
	return nil
}

// Put stores a raw payload as-is.
func (m *MemoryStorage) Put(key string, raw []byte) {
	m.mu.Lock()
	m.carts[key] = raw
	m.mu.Unlock()
}
