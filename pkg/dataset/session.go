package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

// TableLoader produces the sales table for a session.
type TableLoader interface {
	Load(ctx context.Context) (*sales.Table, error)
}

// TableLoaderFunc adapts a function to TableLoader.
type TableLoaderFunc func(ctx context.Context) (*sales.Table, error)

// Load calls f.
func (f TableLoaderFunc) Load(ctx context.Context) (*sales.Table, error) { return f(ctx) }

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("dataset: session not found")

// Session caches the loaded table for its lifetime. The first completed load
// outcome, table or error, is kept until the session is restarted. A load
// aborted by the caller's context is not kept.
type Session struct {
	ID        string
	CreatedAt time.Time

	loader TableLoader
	mu     sync.Mutex
	done   bool
	table  *sales.Table
	err    error
	loaded atomic.Pointer[time.Time]
}

func newSession(loader TableLoader) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		loader:    loader,
	}
}

// Table returns the session table, fetching it on first use.
func (s *Session) Table(ctx context.Context) (*sales.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return s.table, s.err
	}
	if s.loader == nil {
		s.done = true
		s.err = fmt.Errorf("%w: no loader configured", sales.ErrDataUnavailable)
		return nil, s.err
	}
	table, err := s.loader.Load(ctx)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	s.table, s.err, s.done = table, err, true
	loaded := time.Now().UTC()
	s.loaded.Store(&loaded)
	return s.table, s.err
}

// LoadedAt returns when the fetch completed, zero if it has not run yet.
func (s *Session) LoadedAt() time.Time {
	if loaded := s.loaded.Load(); loaded != nil {
		return *loaded
	}
	return time.Time{}
}

// SessionManager owns the sessions of an application shell. It is injected
// into the dashboard service rather than held in package state.
type SessionManager struct {
	loader TableLoader

	mu        sync.RWMutex
	sessions  map[string]*Session
	defaultID string
}

// NewSessionManager builds a manager whose sessions load through loader.
func NewSessionManager(loader TableLoader) *SessionManager {
	return &SessionManager{
		loader:   loader,
		sessions: make(map[string]*Session),
	}
}

// Open starts a new session.
func (m *SessionManager) Open() *Session {
	sess := newSession(m.loader)
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return sess
}

// Get returns an open session by id.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Default returns the shared session used when a caller does not name one,
// opening it on first use.
func (m *SessionManager) Default() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[m.defaultID]; ok {
		return sess
	}
	sess := newSession(m.loader)
	m.sessions[sess.ID] = sess
	m.defaultID = sess.ID
	return sess
}

// Resolve returns the named session, or the default one when id is blank.
func (m *SessionManager) Resolve(id string) (*Session, error) {
	if id == "" {
		return m.Default(), nil
	}
	return m.Get(id)
}

// Restart replaces a session with a fresh one so the next access refetches
// the dataset. Restarting the default session keeps it the default.
func (m *SessionManager) Restart(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		if m.defaultID == "" {
			sess := newSession(m.loader)
			m.sessions[sess.ID] = sess
			m.defaultID = sess.ID
			return sess, nil
		}
		id = m.defaultID
	}
	if _, ok := m.sessions[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	sess := newSession(m.loader)
	m.sessions[sess.ID] = sess
	if id == m.defaultID {
		m.defaultID = sess.ID
	}
	return sess, nil
}

// Close drops a session.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	if id == m.defaultID {
		m.defaultID = ""
	}
}

// Len returns the number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
