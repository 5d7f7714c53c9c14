package settings

import (
	"context"
	"sync"
)

// MemoryStore keeps settings for the life of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	defaults Settings
	current  Settings
}

// NewMemoryStore starts from defaults.
func NewMemoryStore(defaults Settings) *MemoryStore {
	return &MemoryStore{defaults: defaults.Clone(), current: defaults.Clone()}
}

func (m *MemoryStore) Get(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, p Patch) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = p.Apply(m.current)
	return m.current.Clone(), nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) (Settings, error) {
	p, err := PatchFor(key, value)
	if err != nil {
		return Settings{}, err
	}
	return m.Update(ctx, p)
}

func (m *MemoryStore) Reset(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.defaults.Clone()
	return m.current.Clone(), nil
}

func (m *MemoryStore) Close() error { return nil }
