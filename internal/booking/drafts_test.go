package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tourism-portal/internal/model"
)

func TestDraftsExpire(t *testing.T) {
	now := fixedNow
	ds := NewDrafts(10*time.Minute, func() time.Time { return now })
	ds.Put(model.BookingDraft{ID: "d1", OwnerID: "u1"})
	ds.Put(model.BookingDraft{ID: "d2", OwnerID: "u2", PaymentID: "pi_charged1"})

	now = now.Add(5 * time.Minute)
	_, err := ds.Get("u1", "d1")
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	_, err = ds.Get("u1", "d1")
	assert.ErrorIs(t, err, ErrDraftMissing)

	purged := ds.Purge()
	require.Len(t, purged, 1)
	assert.Equal(t, "pi_charged1", purged[0].PaymentID)
	assert.Zero(t, ds.Len())
}

func TestDraftsPutAbandonsEarlierDraftOfOwner(t *testing.T) {
	ds := NewDrafts(time.Hour, func() time.Time { return fixedNow })
	ds.Put(model.BookingDraft{ID: "d1", OwnerID: "u1"})
	ds.Put(model.BookingDraft{ID: "charged", OwnerID: "u1", PaymentID: "pi_x"})
	ds.Put(model.BookingDraft{ID: "other", OwnerID: "u2"})
	ds.Put(model.BookingDraft{ID: "d2", OwnerID: "u1"})

	_, err := ds.Get("u1", "d1")
	assert.ErrorIs(t, err, ErrDraftMissing)
	_, err = ds.Get("u1", "charged")
	assert.NoError(t, err)
	_, err = ds.Get("u2", "other")
	assert.NoError(t, err)
	_, err = ds.Get("u1", "d2")
	assert.NoError(t, err)
}

func TestDraftsAcquireRelease(t *testing.T) {
	now := fixedNow
	ds := NewDrafts(time.Minute, func() time.Time { return now })
	ds.Put(model.BookingDraft{ID: "d1", OwnerID: "u1"})

	d, err := ds.Acquire("u1", "d1")
	require.NoError(t, err)
	_, err = ds.Acquire("u1", "d1")
	assert.ErrorIs(t, err, ErrPaymentInProgress)

	now = now.Add(time.Hour)
	assert.Empty(t, ds.Purge(), "a draft being paid is never purged")

	d.PaymentID = "pi_123456789"
	ds.Release(d)
	got, err := ds.Get("u1", "d1")
	require.NoError(t, err)
	assert.Equal(t, "pi_123456789", got.PaymentID)
}
