package db

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreClosed is returned by a closed MemoryStore
var ErrStoreClosed = errors.New("store closed")

// MemoryStore is an in-process Store. Values are copied on the way in and out.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool

	// Error injection for testing
	SetErr error
	GetErr error
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrStoreClosed
	}
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = clone(value)
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	delete(m.data, key)
	return nil
}

// SetMany implements Store.
func (m *MemoryStore) SetMany(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	if m.SetErr != nil {
		return m.SetErr
	}
	for k, v := range entries {
		m.data[k] = clone(v)
	}
	return nil
}

// Keys returns the number of stored keys
func (m *MemoryStore) Keys() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
