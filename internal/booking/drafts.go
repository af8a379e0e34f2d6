package booking

import (
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/tourism-portal/internal/metrics"
	"github.com/iliyamo/tourism-portal/internal/model"
)

var (
	// ErrDraftMissing means there is no live draft with that id for the
	// caller: never created, expired, abandoned or already consumed.
	ErrDraftMissing = errors.New("booking draft missing")
	// ErrPaymentInProgress means another Pay call holds the draft.
	ErrPaymentInProgress = errors.New("payment already in progress for this booking")
)

// Drafts is the in-memory handoff between the selection step and the
// payment step. A draft is visible only to its owner, lives until its TTL
// runs out, and is never written to durable storage.
type Drafts struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]*slot
}

type slot struct {
	draft   model.BookingDraft
	expires time.Time
	paying  bool
}

// NewDrafts returns a container whose drafts expire after ttl without use.
func NewDrafts(ttl time.Duration, now func() time.Time) *Drafts {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &Drafts{ttl: ttl, now: now, items: make(map[string]*slot)}
}

// Put stores d. Earlier drafts of the same owner are abandoned unless they
// are being paid or already hold a captured payment.
func (ds *Drafts) Put(d model.BookingDraft) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	for id, s := range ds.items {
		if s.draft.OwnerID == d.OwnerID && !s.paying && s.draft.PaymentID == "" {
			delete(ds.items, id)
		}
	}
	ds.items[d.ID] = &slot{draft: d, expires: ds.now().Add(ds.ttl)}
	metrics.DraftsActive.Set(float64(len(ds.items)))
}

// lookup returns the live slot of id for owner. Caller holds mu.
func (ds *Drafts) lookup(owner, id string) (*slot, bool) {
	s, ok := ds.items[id]
	if !ok || s.draft.OwnerID != owner {
		return nil, false
	}
	if !s.paying && ds.now().After(s.expires) {
		delete(ds.items, id)
		metrics.DraftsActive.Set(float64(len(ds.items)))
		return nil, false
	}
	return s, true
}

// Get returns the draft id of owner.
func (ds *Drafts) Get(owner, id string) (model.BookingDraft, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	s, ok := ds.lookup(owner, id)
	if !ok {
		return model.BookingDraft{}, ErrDraftMissing
	}
	return s.draft, nil
}

// Acquire marks the draft as being paid and returns it. A second Acquire
// before Release fails with ErrPaymentInProgress.
func (ds *Drafts) Acquire(owner, id string) (model.BookingDraft, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	s, ok := ds.lookup(owner, id)
	if !ok {
		return model.BookingDraft{}, ErrDraftMissing
	}
	if s.paying {
		return model.BookingDraft{}, ErrPaymentInProgress
	}
	s.paying = true
	return s.draft, nil
}

// Release hands an acquired draft back, storing d (which may now carry a
// PaymentID) and restarting its TTL.
func (ds *Drafts) Release(d model.BookingDraft) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	s, ok := ds.items[d.ID]
	if !ok {
		return
	}
	s.draft = d
	s.paying = false
	s.expires = ds.now().Add(ds.ttl)
}

// Discard removes a draft; used once its booking exists.
func (ds *Drafts) Discard(id string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.items, id)
	metrics.DraftsActive.Set(float64(len(ds.items)))
}

// Purge drops expired drafts that are not being paid and returns them.
// A returned draft with a PaymentID was charged without a booking and needs
// reconciling.
func (ds *Drafts) Purge() []model.BookingDraft {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	now := ds.now()
	var purged []model.BookingDraft
	for id, s := range ds.items {
		if !s.paying && now.After(s.expires) {
			purged = append(purged, s.draft)
			delete(ds.items, id)
		}
	}
	metrics.DraftsActive.Set(float64(len(ds.items)))
	return purged
}

// Len returns the number of drafts held.
func (ds *Drafts) Len() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return len(ds.items)
}
