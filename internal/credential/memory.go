package credential

import (
	"context"
	"sync"
)

// MemoryStorage implements Storage in memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	creds map[System]Credentials
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{creds: map[System]Credentials{}}
}

func (m *MemoryStorage) Save(ctx context.Context, system System, creds *Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[system] = *creds
	return nil
}

func (m *MemoryStorage) Get(ctx context.Context, system System) (*Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.creds[system]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, system System) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.creds, system)
	return nil
}
