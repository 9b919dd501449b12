package kv

import "sync"

// Memory is an in-process substrate. Nothing survives a restart; it backs
// tests and the "memory" store backend.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory instantiates an empty Memory substrate.
func NewMemory() *Memory {
	return &Memory{
		m: map[string]string{},
	}
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.m[key]
	return v, ok, nil
}

// Set stores value under key.
// Returns ErrEmptyKey if key is empty.
func (m *Memory) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
	return nil
}

// SetMany stores all entries under a single lock.
func (m *Memory) SetMany(entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if e.Key == "" {
			return ErrEmptyKey
		}
	}
	for _, e := range entries {
		m.m[e.Key] = e.Value
	}
	return nil
}
