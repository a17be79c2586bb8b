package visit

import (
	"context"
	"sync"

	"savipets/database/visitstore"

	"go.uber.org/zap"
)

// Manager scopes reconciler ownership: one reconciler per observed visit,
// reference-counted so several watchers of the same visit share one
// subscription and one timer. Releasing the last reference tears both down.
type Manager struct {
	store  visitstore.VisitStore
	logger *zap.Logger
	opts   []Option

	mu     sync.Mutex
	active map[string]*managed
}

type managed struct {
	rec  *Reconciler
	refs int
}

func NewManager(store visitstore.VisitStore, logger *zap.Logger, opts ...Option) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
		opts:   opts,
		active: make(map[string]*managed),
	}
}

// Acquire returns the reconciler for a visit, starting one if none is live.
func (m *Manager) Acquire(ctx context.Context, visitID string) (*Reconciler, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.active[visitID]; ok {
		entry.refs++
		return entry.rec, nil
	}

	rec := NewReconciler(m.store, visitID, m.logger, m.opts...)
	if err := rec.Start(ctx); err != nil {
		return nil, err
	}
	m.active[visitID] = &managed{rec: rec, refs: 1}
	return rec, nil
}

// Peek returns the live reconciler for a visit without taking a reference.
func (m *Manager) Peek(visitID string) (*Reconciler, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.active[visitID]
	if !ok {
		return nil, false
	}
	return entry.rec, true
}

// Release drops one reference; the last release stops the reconciler. Unknown
// or already-released ids are a no-op.
func (m *Manager) Release(visitID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.active[visitID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs > 0 {
		return
	}
	entry.rec.Stop()
	delete(m.active, visitID)
}

// ReleaseAll stops every live reconciler; used on shutdown.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, entry := range m.active {
		entry.rec.Stop()
		delete(m.active, id)
	}
}

// ActiveCount reports live reconcilers; should return to zero after teardown.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
