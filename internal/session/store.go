// Package session owns "who is using this client". A Store holds the state
// of one browser client, persists its credential through a Storage, and
// validates a persisted credential once before trusting it. The Manager maps
// client ids to Stores.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/iliyamo/tourism-portal/internal/metrics"
	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/utils"
)

// Authenticator is the slice of the backend a Store needs.
// *gateway.AuthAPI satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (model.Credential, error)
	Register(ctx context.Context, reg model.Registration) (model.Credential, error)
	ValidateToken(ctx context.Context, token string) (model.Identity, error)
}

// Store is the session of one client. It is safe for concurrent use.
type Store struct {
	clientID string
	auth     Authenticator
	storage  Storage
	log      *slog.Logger

	// persistMu pairs each state change with its storage write, so an
	// erase decided for one state never lands on another state's credential.
	persistMu sync.Mutex

	mu      sync.RWMutex
	state   State
	token   string
	changed chan struct{} // closed and replaced on every transition
	subs    map[int]func(State)
	nextSub int
}

// NewStore returns an uninitialised Store for clientID.
func NewStore(clientID string, auth Authenticator, storage Storage, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		clientID: clientID,
		auth:     auth,
		storage:  storage,
		log:      log,
		state:    Uninitialized(),
		changed:  make(chan struct{}),
		subs:     make(map[int]func(State)),
	}
}

// ClientID returns the storage namespace of the store.
func (s *Store) ClientID() string { return s.clientID }

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns the current identity, or nil when not authenticated.
func (s *Store) Identity() *model.Identity { return s.State().IdentityPtr() }

// Token returns the bearer token of the current identity, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) IsLoading() bool       { return s.State().IsLoading() }
func (s *Store) IsAuthenticated() bool { return s.State().IsAuthenticated() }

// Subscribe registers fn to be called after every state change. The
// returned func removes the subscription. fn must not call back into the
// Store.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Await blocks until the store has left Uninitialized and Loading, or ctx is
// done. It returns the last observed state and ctx.Err() on timeout.
func (s *Store) Await(ctx context.Context) (State, error) {
	for {
		s.mu.RLock()
		st, ch := s.state, s.changed
		s.mu.RUnlock()
		if st.Settled() {
			return st, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return s.State(), ctx.Err()
		}
	}
}

// transition installs next and notifies waiters and subscribers.
func (s *Store) transition(next State, token string) {
	s.transitionIf(nil, next, token)
}

// transitionIf is transition guarded by cond, evaluated under the lock
// against the current state. It reports whether the transition happened.
func (s *Store) transitionIf(cond func(State) bool, next State, token string) bool {
	s.mu.Lock()
	if cond != nil && !cond(s.state) {
		s.mu.Unlock()
		return false
	}
	s.state = next
	s.token = token
	close(s.changed)
	s.changed = make(chan struct{})
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return true
}

// Initialize reads the persisted credential and validates it against the
// backend. It runs once; later calls return immediately. While it runs the
// store reports Loading. Any failure (storage, network, 401, malformed
// profile) erases the persisted credential and ends in Anonymous.
func (s *Store) Initialize(ctx context.Context) State {
	uninitialized := func(st State) bool { return st.Status() == StatusUninitialized }
	if !s.transitionIf(uninitialized, Loading(), "") {
		return s.State()
	}

	final := s.validatePersisted(ctx)
	metrics.SessionInitializations.WithLabelValues(final.String()).Inc()
	return final
}

// validatePersisted settles a Loading store. A Login or Register that lands
// while validation is in flight wins; the outcome here is then dropped.
func (s *Store) validatePersisted(ctx context.Context) State {
	stillLoading := func(st State) bool { return st.IsLoading() }
	reject := func() State {
		s.persistMu.Lock()
		defer s.persistMu.Unlock()
		if s.transitionIf(stillLoading, Anonymous(), "") {
			s.erase(ctx)
		}
		return s.State()
	}

	token, ok, err := s.storage.Get(ctx, s.clientID, KeyToken)
	if err != nil {
		s.log.WarnContext(ctx, "session: read persisted credential", "client", s.clientID, "error", err)
		return reject()
	}
	if !ok || token == "" {
		s.transitionIf(stillLoading, Anonymous(), "")
		return s.State()
	}

	if exp, ok := utils.TokenExpiry(token); ok && !exp.After(time.Now()) {
		s.log.InfoContext(ctx, "session: persisted credential expired", "client", s.clientID, "expired_at", exp)
		return reject()
	}

	id, err := s.auth.ValidateToken(ctx, token)
	if err != nil {
		s.log.InfoContext(ctx, "session: persisted credential rejected", "client", s.clientID, "error", err)
		return reject()
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.transitionIf(stillLoading, Authenticated(id), token) {
		// refresh the cached copy with the server's view
		s.persistIdentity(ctx, id)
	}
	return s.State()
}

// Login authenticates against the backend and adopts the returned identity.
// On failure the error is returned and the state is left as it was.
// Concurrent logins are not sequenced; the last to finish wins.
func (s *Store) Login(ctx context.Context, email, password string) (model.Identity, error) {
	cred, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return model.Identity{}, err
	}
	s.adopt(ctx, cred)
	return cred.Identity, nil
}

// Register creates an account and adopts it, with the same contract as Login.
func (s *Store) Register(ctx context.Context, reg model.Registration) (model.Identity, error) {
	cred, err := s.auth.Register(ctx, reg)
	if err != nil {
		return model.Identity{}, err
	}
	s.adopt(ctx, cred)
	return cred.Identity, nil
}

func (s *Store) adopt(ctx context.Context, cred model.Credential) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.storage.Set(ctx, s.clientID, KeyToken, cred.Token); err != nil {
		s.log.WarnContext(ctx, "session: persist token", "client", s.clientID, "error", err)
	}
	s.persistIdentity(ctx, cred.Identity)
	s.transition(Authenticated(cred.Identity), cred.Token)
}

func (s *Store) persistIdentity(ctx context.Context, id model.Identity) {
	raw, err := json.Marshal(id)
	if err == nil {
		err = s.storage.Set(ctx, s.clientID, KeyUser, string(raw))
	}
	if err != nil {
		s.log.WarnContext(ctx, "session: persist identity", "client", s.clientID, "error", err)
	}
}

// Logout erases the persisted credential and clears the identity. It makes
// no backend call and is idempotent.
func (s *Store) Logout(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.erase(ctx)
	s.transition(Anonymous(), "")
}

func (s *Store) erase(ctx context.Context) {
	if err := s.storage.Delete(ctx, s.clientID, KeyToken, KeyUser); err != nil {
		s.log.WarnContext(ctx, "session: erase credential", "client", s.clientID, "error", err)
	}
}

// CachedIdentity returns the identity snapshot in storage. It is a hint for
// display only and must not be used for access decisions.
func (s *Store) CachedIdentity(ctx context.Context) (model.Identity, bool) {
	raw, ok, err := s.storage.Get(ctx, s.clientID, KeyUser)
	if err != nil || !ok {
		return model.Identity{}, false
	}
	var id model.Identity
	if json.Unmarshal([]byte(raw), &id) != nil {
		return model.Identity{}, false
	}
	return id, true
}

// SetPendingCourse remembers a course the client tried to enroll in before
// signing in.
func (s *Store) SetPendingCourse(ctx context.Context, courseID string) error {
	return s.storage.Set(ctx, s.clientID, KeyPendingCourse, courseID)
}

// TakePendingCourse returns and clears the remembered course id.
func (s *Store) TakePendingCourse(ctx context.Context) (string, bool) {
	id, ok, err := s.storage.Get(ctx, s.clientID, KeyPendingCourse)
	if err != nil {
		s.log.WarnContext(ctx, "session: read pending course", "client", s.clientID, "error", err)
		return "", false
	}
	if !ok || id == "" {
		return "", false
	}
	if err := s.storage.Delete(ctx, s.clientID, KeyPendingCourse); err != nil {
		s.log.WarnContext(ctx, "session: clear pending course", "client", s.clientID, "error", err)
	}
	return id, true
}

// Close drops subscribers and releases waiters. The persisted credential is
// kept, so a later Store for the same client starts from it.
func (s *Store) Close() {
	s.mu.Lock()
	s.subs = make(map[int]func(State))
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
}
