package storage

import (
	"context"
	"sync"
)

type memory struct {
	lock   sync.RWMutex
	values map[string][]byte
}

// NewMemory returns a new Storage that keeps all values in memory.
func NewMemory() Storage {
	return &memory{
		values: make(map[string][]byte),
	}
}

func (m *memory) Has(ctx context.Context, key string) (bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	_, ok := m.values[key]
	return ok, nil
}

func (m *memory) Put(ctx context.Context, key string, content []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	val := make([]byte, len(content))
	copy(val, content)
	m.values[key] = val
	return nil
}

func (m *memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	content, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	val := make([]byte, len(content))
	copy(val, content)
	return val, nil
}
