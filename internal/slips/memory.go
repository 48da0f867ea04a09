package slips

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fjod/storefront/internal/domain"
)

type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, sessionID, fileName, contentType string, r io.Reader, size int64) (domain.SlipRef, error) {
	if err := Check(fileName, contentType, size); err != nil {
		return domain.SlipRef{}, err
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxSlipSize+1))
	if err != nil {
		return domain.SlipRef{}, fmt.Errorf("failed to read slip: %w", err)
	}
	if err := Check(fileName, contentType, int64(len(data))); err != nil {
		return domain.SlipRef{}, err
	}

	key := objectKey(sessionID, fileName)
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()

	return domain.SlipRef{Key: key, FileName: fileName, ContentType: contentType, Size: int64(len(data))}, nil
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}
