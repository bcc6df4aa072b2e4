package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/ports"
)

// FallbackMode decides what a list shows when its collection cannot be fetched.
type FallbackMode string

const (
	// FallbackNone shows nothing but the error.
	FallbackNone FallbackMode = "none"
	// FallbackSnapshot shows the last successfully fetched collection, marked
	// stale, when the backend health probe also fails.
	FallbackSnapshot FallbackMode = "snapshot"
)

const snapshotTimeout = 2 * time.Second

type Options struct {
	Fallback  FallbackMode
	Cache     ports.SnapshotCache
	Probe     ports.HealthProbe
	Recorder  ports.ChangeRecorder
	Validator *Validator
	Metrics   *Metrics
	// Keyword unlocks deletes; DefaultConfirmKeyword when empty.
	Keyword string
}

// Manager owns the client-side state of one list page: the fetched
// collection, its load status, and the single in-flight mutation.
// The backend stays the source of truth; every acknowledged mutation is
// followed by a full refetch.
type Manager[T domain.Record] struct {
	schema Schema[T]
	repo   ports.CollectionRepository[T]
	opts   Options

	mu      sync.RWMutex
	items   []T
	loading bool
	stale   bool
	lastErr error
	gen     uint64

	mutating atomic.Bool
}

var _ ports.ResourceManager[domain.Event] = (*Manager[domain.Event])(nil)

func NewManager[T domain.Record](schema Schema[T], repo ports.CollectionRepository[T], opts Options) *Manager[T] {
	if opts.Validator == nil {
		opts.Validator = NewValidator()
	}
	if opts.Fallback == "" {
		opts.Fallback = FallbackNone
	}
	return &Manager[T]{
		schema: schema,
		repo:   repo,
		opts:   opts,
	}
}

func (m *Manager[T]) Resource() string { return m.schema.Resource }

func (m *Manager[T]) ReadOnly() bool { return m.schema.ReadOnly }

func (m *Manager[T]) Schema() Schema[T] { return m.schema }

// Load fetches the whole collection. Only the latest call may update state.
func (m *Manager[T]) Load(ctx context.Context) error {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.loading = true
	empty := len(m.items) == 0
	m.mu.Unlock()

	items, err := m.repo.List(ctx)

	var fallback []T
	var usedFallback bool
	if err != nil && empty {
		fallback, usedFallback = m.fallback(ctx, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return err
	}
	m.loading = false
	if err != nil {
		m.lastErr = err
		switch {
		case errors.Is(err, domain.ErrUnexpectedShape):
			m.items = nil
			m.stale = false
		case usedFallback && len(m.items) == 0:
			m.items = fallback
			m.stale = true
		default:
			m.stale = len(m.items) > 0
		}
		log.Printf("%s: load failed: %v", m.schema.Resource, err)
		return err
	}
	if items == nil {
		items = []T{}
	}
	m.items = items
	m.stale = false
	m.lastErr = nil
	m.saveSnapshot(ctx, items)
	return nil
}

// fallback returns the cached snapshot when the policy allows it and the
// backend looks unreachable. Authorization and shape errors never fall back.
func (m *Manager[T]) fallback(ctx context.Context, cause error) ([]T, bool) {
	if m.opts.Fallback != FallbackSnapshot || m.opts.Cache == nil {
		return nil, false
	}
	if errors.Is(cause, domain.ErrUnauthorized) || errors.Is(cause, domain.ErrUnexpectedShape) {
		return nil, false
	}
	if m.opts.Probe != nil {
		if err := m.opts.Probe.Health(ctx); err == nil {
			return nil, false
		}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
	defer cancel()
	payload, err := m.opts.Cache.LoadSnapshot(ctx, m.schema.Resource)
	if err != nil || len(payload) == 0 {
		return nil, false
	}
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		log.Printf("%s: discarding unreadable snapshot: %v", m.schema.Resource, err)
		return nil, false
	}
	m.opts.Metrics.fallback(m.schema.Resource)
	log.Printf("%s: serving %d records from snapshot", m.schema.Resource, len(items))
	return items, true
}

// saveSnapshot runs with m.mu held so a superseded load cannot overwrite
// a newer snapshot.
func (m *Manager[T]) saveSnapshot(ctx context.Context, items []T) {
	if m.opts.Cache == nil {
		return
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
	defer cancel()
	if err := m.opts.Cache.SaveSnapshot(ctx, m.schema.Resource, payload); err != nil {
		log.Printf("%s: snapshot save failed: %v", m.schema.Resource, err)
	}
}

// Items returns a copy of the current collection in server order.
func (m *Manager[T]) Items() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// Err is the last load failure, or nil.
func (m *Manager[T]) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager[T]) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Manager[T]) Stale() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stale
}

// Filter derives the filtered view for f.
func (m *Manager[T]) Filter(f FilterState) []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.schema.Apply(m.items, f)
}

// View parses the filters and returns what a list page renders.
func (m *Manager[T]) View(search string, fields map[string]string) (ports.ListView[T], error) {
	f, err := m.schema.ParseFilter(search, fields)
	if err != nil {
		return ports.ListView[T]{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	filtered := m.schema.Apply(m.items, f)
	return ports.ListView[T]{
		Items:    filtered,
		Total:    len(m.items),
		Filtered: len(filtered),
		Loading:  m.loading,
		Stale:    m.stale,
		Error:    UserMessage(m.lastErr),
	}, nil
}

func (m *Manager[T]) Get(id domain.ID) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.RecordID().Equal(id) {
			return item, nil
		}
	}
	var zero T
	return zero, domain.ErrNotFound
}

// OpenCreate returns an empty draft.
func (m *Manager[T]) OpenCreate() *Draft[T] {
	return &Draft[T]{mode: DraftCreate}
}

// OpenEdit returns a draft seeded with a copy of the record.
func (m *Manager[T]) OpenEdit(id domain.ID) (*Draft[T], error) {
	rec, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return &Draft[T]{mode: DraftEdit, id: rec.RecordID(), Record: rec}, nil
}

// Submit validates the draft and, only if it is valid, sends it to the
// backend. The draft stays open on any failure.
func (m *Manager[T]) Submit(ctx context.Context, d *Draft[T]) (T, error) {
	var zero T
	if d == nil || d.closed {
		return zero, ErrDraftClosed
	}
	if m.schema.ReadOnly {
		return zero, ErrReadOnly
	}
	if err := m.opts.Validator.Struct(d.Record); err != nil {
		return zero, err
	}
	if !m.mutating.CompareAndSwap(false, true) {
		return zero, ErrMutationInFlight
	}
	defer m.mutating.Store(false)

	var (
		saved  T
		err    error
		action domain.ChangeAction
	)
	if d.mode == DraftEdit {
		action = domain.ChangeUpdated
		saved, err = m.repo.Update(ctx, d.id, d.Record)
	} else {
		action = domain.ChangeCreated
		saved, err = m.repo.Create(ctx, d.Record)
	}
	m.opts.Metrics.mutation(m.schema.Resource, string(action), err)
	if err != nil {
		return zero, err
	}

	id := saved.RecordID()
	if id.IsZero() {
		id = d.id
	}
	d.Record = zero
	d.closed = true

	m.reconcile(ctx, action, id, saved)
	m.recordChange(ctx, action, id)
	return saved, nil
}

func (m *Manager[T]) Create(ctx context.Context, record T) (T, error) {
	d := m.OpenCreate()
	d.Record = record
	return m.Submit(ctx, d)
}

// Update replaces the whole record identified by id.
func (m *Manager[T]) Update(ctx context.Context, id domain.ID, record T) (T, error) {
	d, err := m.OpenEdit(id)
	if err != nil {
		var zero T
		return zero, err
	}
	d.Record = record
	return m.Submit(ctx, d)
}

// Delete removes the record on the backend. Callers go through a ConfirmGate.
func (m *Manager[T]) Delete(ctx context.Context, id domain.ID) error {
	if m.schema.ReadOnly {
		return ErrReadOnly
	}
	if !m.mutating.CompareAndSwap(false, true) {
		return ErrMutationInFlight
	}
	defer m.mutating.Store(false)

	err := m.repo.Delete(ctx, id)
	m.opts.Metrics.mutation(m.schema.Resource, string(domain.ChangeDeleted), err)
	if err != nil {
		return err
	}
	var zero T
	m.reconcile(ctx, domain.ChangeDeleted, id, zero)
	m.recordChange(ctx, domain.ChangeDeleted, id)
	return nil
}

// NewDeleteGate returns a confirmation gate bound to Delete.
func (m *Manager[T]) NewDeleteGate() *ConfirmGate {
	return NewConfirmGate(m.opts.Keyword, m.Delete)
}

// ConfirmDelete runs one pass of the delete confirmation flow.
func (m *Manager[T]) ConfirmDelete(ctx context.Context, id domain.ID, typed string) error {
	rec, err := m.Get(id)
	if err != nil {
		return err
	}
	gate := m.NewDeleteGate()
	if err := gate.Open(rec.RecordID()); err != nil {
		return err
	}
	gate.Type(typed)
	return gate.Confirm(ctx)
}

// reconcile refetches the collection. When the refetch fails after an
// acknowledged mutation, the local copy is patched and marked stale. A
// malformed response leaves the cleared error state as Load set it.
func (m *Manager[T]) reconcile(ctx context.Context, action domain.ChangeAction, id domain.ID, saved T) {
	err := m.Load(ctx)
	if err == nil || errors.Is(err, domain.ErrUnexpectedShape) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch action {
	case domain.ChangeCreated:
		if !saved.RecordID().IsZero() {
			m.items = append(m.items, saved)
		}
	case domain.ChangeUpdated:
		for i, item := range m.items {
			if item.RecordID().Equal(id) {
				m.items[i] = saved
				break
			}
		}
	case domain.ChangeDeleted:
		out := m.items[:0]
		for _, item := range m.items {
			if !item.RecordID().Equal(id) {
				out = append(out, item)
			}
		}
		m.items = out
	}
	m.stale = true
}

func (m *Manager[T]) recordChange(ctx context.Context, action domain.ChangeAction, id domain.ID) {
	if m.opts.Recorder == nil {
		return
	}
	evt := domain.ChangeEvent{
		ID:         uuid.NewString(),
		Resource:   m.schema.Resource,
		Action:     action,
		RecordID:   id,
		OccurredAt: time.Now().UTC(),
	}
	if err := m.opts.Recorder.RecordChange(context.WithoutCancel(ctx), evt); err != nil {
		log.Printf("%s: failed to record %s change for %s: %v", m.schema.Resource, action, id, err)
	}
}
