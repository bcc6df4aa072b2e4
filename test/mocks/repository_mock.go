package mocks

import (
	"context"
	"sync"

	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/ports"
)

// MockCollectionRepository implements ports.CollectionRepository in memory.
// Create and Update go through CreateFunc and UpdateFunc when set, so a test
// can assign IDs or simulate the backend rewriting a record.
type MockCollectionRepository[T domain.Record] struct {
	mu    sync.RWMutex
	items []T

	// Error injection
	ListError   error
	CreateError error
	UpdateError error
	DeleteError error

	CreateFunc func(rec T) T
	UpdateFunc func(id domain.ID, rec T) T
	// ListFunc, when set, answers List instead of the stored items. call is
	// 1 for the first List. It runs without the mock's lock held.
	ListFunc func(ctx context.Context, call int) ([]T, error)
	// Entered, when set, is signalled as each mutation starts; Block, when
	// set, is then received from before the mutation proceeds.
	Entered chan struct{}
	Block   chan struct{}

	// Call tracking
	ListCalls   int
	CreateCalls []T
	UpdateCalls []domain.ID
	DeleteCalls []domain.ID
}

var _ ports.CollectionRepository[domain.Event] = (*MockCollectionRepository[domain.Event])(nil)

func NewMockCollectionRepository[T domain.Record](items ...T) *MockCollectionRepository[T] {
	return &MockCollectionRepository[T]{items: append([]T{}, items...)}
}

func (m *MockCollectionRepository[T]) List(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	m.ListCalls++
	if fn := m.ListFunc; fn != nil {
		call := m.ListCalls
		m.mu.Unlock()
		return fn(ctx, call)
	}
	defer m.mu.Unlock()

	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *MockCollectionRepository[T]) Create(ctx context.Context, rec T) (T, error) {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, rec)
	if m.CreateError != nil {
		var zero T
		return zero, m.CreateError
	}
	if m.CreateFunc != nil {
		rec = m.CreateFunc(rec)
	}
	m.items = append(m.items, rec)
	return rec, nil
}

func (m *MockCollectionRepository[T]) Update(ctx context.Context, id domain.ID, rec T) (T, error) {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, id)
	if m.UpdateError != nil {
		var zero T
		return zero, m.UpdateError
	}
	if m.UpdateFunc != nil {
		rec = m.UpdateFunc(id, rec)
	}
	for i, item := range m.items {
		if item.RecordID().Equal(id) {
			m.items[i] = rec
			return rec, nil
		}
	}
	var zero T
	return zero, domain.ErrNotFound
}

func (m *MockCollectionRepository[T]) Delete(ctx context.Context, id domain.ID) error {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	for i, item := range m.items {
		if item.RecordID().Equal(id) {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockCollectionRepository[T]) wait() {
	if m.Entered != nil {
		m.Entered <- struct{}{}
	}
	if m.Block != nil {
		<-m.Block
	}
}

// Calls returns the number of mutations sent to the backend.
func (m *MockCollectionRepository[T]) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.CreateCalls) + len(m.UpdateCalls) + len(m.DeleteCalls)
}

// SetItems replaces the stored collection (for test setup).
func (m *MockCollectionRepository[T]) SetItems(items ...T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]T{}, items...)
}

// MockHealthProbe implements ports.HealthProbe.
type MockHealthProbe struct {
	mu    sync.Mutex
	Err   error
	Calls int
}

var _ ports.HealthProbe = (*MockHealthProbe)(nil)

func (m *MockHealthProbe) Health(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Err
}
