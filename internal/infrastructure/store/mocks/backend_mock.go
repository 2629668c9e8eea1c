package mocks

import (
	"context"
	"sync"

	"github.com/example/ksd-storefront/internal/infrastructure/store"
)

// MockBackend is an in-memory store.Backend that records calls for tests.
type MockBackend struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetCalls    []string
	SetCalls    []SetCall
	DeleteCalls []string

	GetErr    error
	SetErr    error
	DeleteErr error
}

// SetCall records parameters passed to Set
type SetCall struct {
	Key   string
	Value []byte
}

func NewMockBackend() *MockBackend {
	return &MockBackend{data: make(map[string][]byte)}
}

func (m *MockBackend) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, key)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MockBackend) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := append([]byte(nil), value...)
	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: v})
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = v
	return nil
}

func (m *MockBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, key)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.data, key)
	return nil
}

// Seed stores raw bytes without recording a call.
func (m *MockBackend) Seed(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Raw returns what is stored under key.
func (m *MockBackend) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Reset clears all stored data and recorded calls
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	m.GetCalls = nil
	m.SetCalls = nil
	m.DeleteCalls = nil
	m.GetErr = nil
	m.SetErr = nil
	m.DeleteErr = nil
}
