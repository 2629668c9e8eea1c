package mocks

import (
	"context"
	"sync"
)

// MockProducer records published events instead of writing to Kafka.
type MockProducer struct {
	mu sync.Mutex

	PublishCalls []PublishCall
	PublishErr   error
}

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Key   string
	Event any
}

func NewMockProducer() *MockProducer {
	return &MockProducer{}
}

func (m *MockProducer) Publish(ctx context.Context, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCalls = append(m.PublishCalls, PublishCall{Key: key, Event: event})
	return m.PublishErr
}

// Calls returns a snapshot of recorded calls.
func (m *MockProducer) Calls() []PublishCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishCall, len(m.PublishCalls))
	copy(out, m.PublishCalls)
	return out
}
