package mocks

import (
	"context"
	"sync"

	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/ports"
)

// MockChangePublisher implements ports.ChangeEventPublisher for testing.
// It lets the relay be tested without a real RabbitMQ connection.
type MockChangePublisher struct {
	mu sync.RWMutex

	PublishedEvents []domain.ChangeEvent

	// Error injection for testing error scenarios
	PublishError error

	PublishCallCount int
}

var _ ports.ChangeEventPublisher = (*MockChangePublisher)(nil)

func NewMockChangePublisher() *MockChangePublisher {
	return &MockChangePublisher{
		PublishedEvents: make([]domain.ChangeEvent, 0),
	}
}

func (m *MockChangePublisher) PublishChange(ctx context.Context, evt domain.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++

	if m.PublishError != nil {
		return m.PublishError
	}

	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns a copy of the published events.
func (m *MockChangePublisher) GetPublishedEvents() []domain.ChangeEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]domain.ChangeEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

// MockChangeRecorder implements ports.ChangeRecorder in place of the
// PostgreSQL outbox.
type MockChangeRecorder struct {
	mu sync.RWMutex

	Recorded    []domain.ChangeEvent
	RecordError error
}

var _ ports.ChangeRecorder = (*MockChangeRecorder)(nil)

func (m *MockChangeRecorder) RecordChange(ctx context.Context, evt domain.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RecordError != nil {
		return m.RecordError
	}
	m.Recorded = append(m.Recorded, evt)
	return nil
}

func (m *MockChangeRecorder) Events() []domain.ChangeEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]domain.ChangeEvent, len(m.Recorded))
	copy(events, m.Recorded)
	return events
}
