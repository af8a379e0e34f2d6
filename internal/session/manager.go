package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/tourism-portal/internal/metrics"
)

// DefaultInitTimeout bounds the background validation of a persisted
// credential.
const DefaultInitTimeout = 15 * time.Second

// Manager hands out one Store per client id. A new Store starts its
// Initialize in the background; callers that need a settled state use
// Store.Await with their own deadline.
type Manager struct {
	auth        Authenticator
	storage     Storage
	log         *slog.Logger
	idleTTL     time.Duration
	initTimeout time.Duration
	now         func() time.Time

	mu     sync.Mutex
	stores map[string]*entry
	inits  singleflight.Group
	wg     sync.WaitGroup
}

type entry struct {
	store    *Store
	lastSeen time.Time
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithIdleTTL sets how long an unused Store is kept in memory.
func WithIdleTTL(d time.Duration) ManagerOption {
	return func(m *Manager) { m.idleTTL = d }
}

// WithInitTimeout bounds background initialisation.
func WithInitTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.initTimeout = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(auth Authenticator, storage Storage, log *slog.Logger, opts ...ManagerOption) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		auth:        auth,
		storage:     storage,
		log:         log,
		idleTTL:     30 * time.Minute,
		initTimeout: DefaultInitTimeout,
		now:         time.Now,
		stores:      make(map[string]*entry),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Get returns the Store of clientID, creating it and starting its
// initialisation if needed. It never blocks on the backend.
func (m *Manager) Get(clientID string) *Store {
	m.mu.Lock()
	e, ok := m.stores[clientID]
	if !ok {
		e = &entry{store: NewStore(clientID, m.auth, m.storage, m.log)}
		m.stores[clientID] = e
		metrics.ActiveSessions.Set(float64(len(m.stores)))
	}
	e.lastSeen = m.now()
	s := e.store
	m.mu.Unlock()

	if s.State().Status() == StatusUninitialized {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.initialize(s)
		}()
	}
	return s
}

// initialize runs Initialize once per client even when several requests
// race to create the same Store.
func (m *Manager) initialize(s *Store) {
	_, _, _ = m.inits.Do(s.ClientID(), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), m.initTimeout)
		defer cancel()
		return s.Initialize(ctx), nil
	})
}

// Sweep tears down Stores idle for longer than the idle TTL and returns how
// many were removed. Persisted credentials are left in storage.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.idleTTL)
	var evicted []*Store

	m.mu.Lock()
	for id, e := range m.stores {
		if e.lastSeen.Before(cutoff) && !e.store.IsLoading() {
			evicted = append(evicted, e.store)
			delete(m.stores, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.stores)))
	m.mu.Unlock()

	for _, s := range evicted {
		s.Close()
	}
	if len(evicted) > 0 {
		m.log.Debug("session: evicted idle stores", "count", len(evicted))
	}
	return len(evicted)
}

// Len returns the number of Stores held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// Wait blocks until background initialisations have finished.
func (m *Manager) Wait() { m.wg.Wait() }
