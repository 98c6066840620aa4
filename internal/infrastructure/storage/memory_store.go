package storage

import (
	"context"
	"sync"

	"github.com/jhoicas/Mayorista-api/internal/domain"
)

// MemoryStore almacenamiento en proceso para pruebas y desarrollo.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore crea un almacenamiento vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, key, _ string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.objects[key] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

// Keys claves almacenadas (pruebas).
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
