package kv

import "sync"

// MemoryBackend keeps values in a map. It backs tests and the "memory"
// store setting.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryBackend) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return nil
}
