package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// IdempotencyHeader carries the per-draft key on booking creation. The
// backend is expected to return the first booking for a repeated key.
const IdempotencyHeader = "Idempotency-Key"

// BookingsAPI covers /bookings.
type BookingsAPI struct{ c *Client }

func bookingQuery(f model.BookingFilter) url.Values {
	q := url.Values{}
	addIf(q, "userId", f.UserID)
	addIf(q, "experienceId", f.ExperienceID)
	addIf(q, "hostId", f.HostID)
	addIf(q, "date", f.Date)
	addIf(q, "status", string(f.Status))
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// List returns bookings matching f.
func (b *BookingsAPI) List(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	var out []model.Booking
	err := b.c.do(ctx, request{op: "bookings.list", method: http.MethodGet, path: "/bookings", query: bookingQuery(f)}, &out)
	return out, err
}

func (b *BookingsAPI) Get(ctx context.Context, id string) (model.Booking, error) {
	var out model.Booking
	err := b.c.do(ctx, request{op: "bookings.get", method: http.MethodGet, path: "/bookings/" + escape(id)}, &out)
	return out, err
}

// Create persists a booking. The idempotency key goes out both as a header
// and in the body so either side of the backend can dedupe on it.
func (b *BookingsAPI) Create(ctx context.Context, in model.BookingCreate) (model.Booking, error) {
	var headers map[string]string
	if in.IdempotencyKey != "" {
		headers = map[string]string{IdempotencyHeader: in.IdempotencyKey}
	}
	var out model.Booking
	err := b.c.do(ctx, request{op: "bookings.create", method: http.MethodPost, path: "/bookings", body: in, headers: headers}, &out)
	return out, err
}

func (b *BookingsAPI) Update(ctx context.Context, id string, in model.BookingUpdate) (model.Booking, error) {
	var out model.Booking
	err := b.c.do(ctx, request{op: "bookings.update", method: http.MethodPatch, path: "/bookings/" + escape(id), body: in}, &out)
	return out, err
}

func (b *BookingsAPI) Delete(ctx context.Context, id string) error {
	return b.c.do(ctx, request{op: "bookings.delete", method: http.MethodDelete, path: "/bookings/" + escape(id)}, nil)
}

// ForUser lists the bookings of one tourist.
func (b *BookingsAPI) ForUser(ctx context.Context, userID string, f model.BookingFilter) ([]model.Booking, error) {
	f.UserID = userID
	return b.List(ctx, f)
}

// ForProvider lists bookings of every experience hosted by hostID.
func (b *BookingsAPI) ForProvider(ctx context.Context, hostID string) ([]model.Booking, error) {
	var out []model.Booking
	err := b.c.do(ctx, request{op: "bookings.provider", method: http.MethodGet, path: "/bookings/provider/" + escape(hostID)}, &out)
	return out, err
}

func (b *BookingsAPI) ForExperience(ctx context.Context, experienceID string, f model.BookingFilter) ([]model.Booking, error) {
	f.ExperienceID = experienceID
	return b.List(ctx, f)
}

// ForDate lists bookings on a day given as YYYY-MM-DD.
func (b *BookingsAPI) ForDate(ctx context.Context, date string, f model.BookingFilter) ([]model.Booking, error) {
	f.Date = date
	return b.List(ctx, f)
}
