package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager handles wizard session creation, lookup, and cleanup. Live
// sessions are kept in memory; snapshots go to the SessionStore after every
// change so another instance can pick a session up.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Wizard
	ttl       time.Duration
	store     SessionStore
	submitter Submitter
	logger    *zap.Logger
}

// NewManager creates a manager whose sessions expire after ttl of
// inactivity. A nil store keeps sessions in memory only.
func NewManager(sub Submitter, store SessionStore, ttl time.Duration, logger *zap.Logger) *Manager {
	if store == nil {
		store = NewMemorySessionStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:  make(map[string]*Wizard),
		ttl:       ttl,
		store:     store,
		submitter: sub,
		logger:    logger.Named("wizard"),
	}
}

// Create starts a new session.
func (m *Manager) Create(ctx context.Context) (*Wizard, error) {
	w := New(m.submitter)
	if err := m.Save(ctx, w); err != nil {
		return nil, err
	}
	m.logger.Info("session created", zap.String("session_id", w.ID()))
	return w, nil
}

// Get returns a live session, restoring it from the store when this
// instance does not hold it. Idle sessions are removed.
func (m *Manager) Get(ctx context.Context, id string) (*Wizard, error) {
	m.mu.RLock()
	w, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		if w.IsIdle(m.ttl) {
			m.Remove(ctx, id)
			return nil, ErrSessionNotFound
		}
		return w, nil
	}

	snap, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	w = Restore(snap, m.submitter)
	if w.IsIdle(m.ttl) {
		m.Remove(ctx, id)
		return nil, ErrSessionNotFound
	}
	m.mu.Lock()
	if cur, ok := m.sessions[id]; ok {
		w = cur
	} else {
		m.sessions[id] = w
	}
	m.mu.Unlock()
	return w, nil
}

// Save touches the session and writes its snapshot.
func (m *Manager) Save(ctx context.Context, w *Wizard) error {
	w.Touch()
	m.mu.Lock()
	m.sessions[w.ID()] = w
	m.mu.Unlock()
	return m.store.Save(ctx, w.Snapshot(), m.ttl)
}

// Remove deletes a session.
func (m *Manager) Remove(ctx context.Context, id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	if err := m.store.Delete(ctx, id); err != nil {
		m.logger.Warn("deleting session snapshot", zap.String("session_id", id), zap.Error(err))
	}
}

// Cleanup drops idle sessions and their stored snapshots, and returns how
// many went.
func (m *Manager) Cleanup(ctx context.Context) int {
	var idle []string
	m.mu.Lock()
	for id, w := range m.sessions {
		if w.IsIdle(m.ttl) {
			delete(m.sessions, id)
			idle = append(idle, id)
		}
	}
	m.mu.Unlock()
	for _, id := range idle {
		if err := m.store.Delete(ctx, id); err != nil {
			m.logger.Warn("deleting session snapshot", zap.String("session_id", id), zap.Error(err))
		}
	}
	return len(idle)
}

// Len returns the number of live sessions held by this instance.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run calls Cleanup every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Cleanup(ctx); n > 0 {
				m.logger.Info("idle sessions removed", zap.Int("count", n))
			}
		}
	}
}

// IsNotFound reports whether err means the session is gone.
func IsNotFound(err error) bool { return errors.Is(err, ErrSessionNotFound) }
