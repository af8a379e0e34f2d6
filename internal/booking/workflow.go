// Package booking runs the select → pay → confirm wizard. A draft built at
// the end of selection is handed to the payment step through the in-memory
// Drafts container; the booking is created on the backend only after the
// payment collaborator captured the charge.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tourism-portal/internal/apperror"
	"github.com/iliyamo/tourism-portal/internal/gateway"
	"github.com/iliyamo/tourism-portal/internal/metrics"
	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/payment"
	"github.com/iliyamo/tourism-portal/internal/queue"
)

// DateLayout is the wire format of a selected booking date.
const DateLayout = "2006-01-02"

// ListingPath is where a missing draft or entity sends the user.
const ListingPath = "/explore"

// ExperienceSource loads experiences; *gateway.ExperiencesAPI satisfies it.
type ExperienceSource interface {
	Get(ctx context.Context, id string) (model.Experience, error)
}

// BookingSink creates and reads bookings; *gateway.BookingsAPI satisfies it.
type BookingSink interface {
	Create(ctx context.Context, in model.BookingCreate) (model.Booking, error)
	Get(ctx context.Context, id string) (model.Booking, error)
}

// EventPublisher announces confirmed bookings.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// Workflow is safe for concurrent use.
type Workflow struct {
	experiences ExperienceSource
	bookings    BookingSink
	payments    payment.Processor
	drafts      *Drafts
	events      EventPublisher
	log         *slog.Logger
	now         func() time.Time
	currency    string
}

// Option customises a Workflow.
type Option func(*Workflow)

// WithEvents publishes booking.confirmed after each created booking.
func WithEvents(p EventPublisher) Option { return func(w *Workflow) { w.events = p } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(w *Workflow) { w.log = l } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(w *Workflow) { w.now = now } }

// WithCurrency sets the ISO currency passed to the processor (default "usd").
func WithCurrency(c string) Option { return func(w *Workflow) { w.currency = c } }

func New(experiences ExperienceSource, bookings BookingSink, payments payment.Processor, drafts *Drafts, opts ...Option) *Workflow {
	if experiences == nil || bookings == nil || payments == nil || drafts == nil {
		panic("booking.New: nil dependency")
	}
	w := &Workflow{
		experiences: experiences,
		bookings:    bookings,
		payments:    payments,
		drafts:      drafts,
		log:         slog.Default(),
		now:         time.Now,
		currency:    "usd",
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Quote is what the selection screen shows: the experience, the clamped
// participant count and the resulting price.
type Quote struct {
	Experience      model.Experience `json:"experience"`
	Participants    int              `json:"participants"`
	MaxParticipants int              `json:"maxParticipants"`
	UnitPrice       model.Money      `json:"unitPrice"`
	TotalAmount     model.Money      `json:"totalAmount"`
	MinDate         string           `json:"minDate"`
}

// Selection is the input of the selection step.
type Selection struct {
	Date         string `json:"date" form:"date"`
	Participants int    `json:"participants" form:"participants"`
}

// Price is unit × participants in exact cents.
func Price(unit model.Money, participants int) model.Money {
	return unit.Times(participants)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func (w *Workflow) today() time.Time {
	y, m, d := w.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (w *Workflow) loadExperience(ctx context.Context, id string) (model.Experience, error) {
	exp, err := w.experiences.Get(ctx, id)
	if errors.Is(err, gateway.ErrNotFound) {
		return model.Experience{}, apperror.NotFound("experience not found", ListingPath)
	}
	if err != nil {
		return model.Experience{}, apperror.Remote(gateway.UserMessage(err), err)
	}
	return exp, nil
}

// Select loads the experience and prices participants, clamped into
// 1..maxParticipants. It is read-only.
func (w *Workflow) Select(ctx context.Context, experienceID string, participants int) (Quote, error) {
	exp, err := w.loadExperience(ctx, experienceID)
	if err != nil {
		return Quote{}, err
	}
	limit := exp.ParticipantLimit()
	n := clamp(participants, 1, limit)
	return Quote{
		Experience:      exp,
		Participants:    n,
		MaxParticipants: limit,
		UnitPrice:       exp.Price,
		TotalAmount:     Price(exp.Price, n),
		MinDate:         w.today().Format(DateLayout),
	}, nil
}

// Begin validates a selection and stores a fresh draft for the identity.
// The draft gets its own id and idempotency key.
func (w *Workflow) Begin(ctx context.Context, id *model.Identity, experienceID string, sel Selection) (model.BookingDraft, error) {
	if id == nil {
		return model.BookingDraft{}, apperror.AuthRequired("/booking/" + experienceID)
	}

	fields := map[string]string{}
	var date time.Time
	if sel.Date == "" {
		fields["date"] = "Please select a date"
	} else if d, err := time.Parse(DateLayout, sel.Date); err != nil {
		fields["date"] = "Date must look like YYYY-MM-DD"
	} else if d.Before(w.today()) {
		fields["date"] = "Date cannot be in the past"
	} else {
		date = d
	}
	if sel.Participants < 1 {
		fields["participants"] = "At least one participant is required"
	}
	if len(fields) > 0 {
		return model.BookingDraft{}, apperror.Validation("please correct the booking details", fields)
	}

	exp, err := w.loadExperience(ctx, experienceID)
	if err != nil {
		return model.BookingDraft{}, err
	}
	if limit := exp.ParticipantLimit(); sel.Participants > limit {
		return model.BookingDraft{}, apperror.Validation("please correct the booking details",
			map[string]string{"participants": "At most " + strconv.Itoa(limit) + " participants"})
	}

	d := model.BookingDraft{
		ID:             uuid.NewString(),
		IdempotencyKey: uuid.NewString(),
		OwnerID:        id.ID,
		ExperienceID:   exp.ID,
		ExperienceName: exp.Title,
		Date:           date,
		Participants:   sel.Participants,
		UnitPrice:      exp.Price,
		TotalAmount:    Price(exp.Price, sel.Participants),
		HostID:         exp.HostID,
		CreatedAt:      w.now().UTC(),
	}
	if d.ExperienceID == "" {
		d.ExperienceID = experienceID
	}
	w.drafts.Put(d)
	w.log.InfoContext(ctx, "booking: draft created", "draft_id", d.ID, "experience_id", d.ExperienceID, "participants", d.Participants)
	return d, nil
}

// Draft returns the live draft of the identity, or ErrDraftMissing.
func (w *Workflow) Draft(id *model.Identity, draftID string) (model.BookingDraft, error) {
	if id == nil {
		return model.BookingDraft{}, apperror.AuthRequired("/payment/" + draftID)
	}
	return w.drafts.Get(id.ID, draftID)
}

// Pay charges the draft and creates the booking.
//
// A decline keeps the draft and creates nothing. A create failure keeps the
// draft together with the captured PaymentID; the user's retry then skips
// the charge and repeats the create with the same idempotency key. Only a
// created booking discards the draft.
func (w *Workflow) Pay(ctx context.Context, id *model.Identity, draftID string, card payment.Card) (model.Booking, error) {
	if id == nil {
		return model.Booking{}, apperror.AuthRequired("/payment/" + draftID)
	}
	d, err := w.drafts.Acquire(id.ID, draftID)
	if errors.Is(err, ErrPaymentInProgress) {
		return model.Booking{}, &apperror.Error{Kind: apperror.KindConflict, Message: err.Error(), Err: err}
	}
	if err != nil {
		return model.Booking{}, err
	}

	if d.PaymentID == "" {
		receipt, err := w.payments.Charge(ctx, payment.ChargeRequest{
			Amount:         d.TotalAmount,
			Currency:       w.currency,
			Description:    d.ExperienceName,
			IdempotencyKey: d.IdempotencyKey,
			Card:           card,
		})
		if err != nil {
			w.drafts.Release(d)
			if errors.Is(err, payment.ErrDeclined) {
				metrics.Payments.WithLabelValues("declined").Inc()
				w.log.InfoContext(ctx, "booking: payment declined", "draft_id", d.ID)
				return model.Booking{}, apperror.PaymentDeclined("Your card was declined. Please try another card.", err)
			}
			metrics.Payments.WithLabelValues("error").Inc()
			w.log.ErrorContext(ctx, "booking: payment failed", "draft_id", d.ID, "error", err)
			return model.Booking{}, apperror.Remote("The payment service is unavailable. Please try again.", err)
		}
		metrics.Payments.WithLabelValues("captured").Inc()
		d.PaymentID = receipt.PaymentID
	}

	b, err := w.bookings.Create(ctx, model.BookingCreate{
		UserID:         id.ID,
		ExperienceID:   d.ExperienceID,
		Date:           d.Date,
		Participants:   d.Participants,
		TotalAmount:    d.TotalAmount,
		Status:         model.BookingConfirmed,
		PaymentID:      d.PaymentID,
		IdempotencyKey: d.IdempotencyKey,
	})
	if err != nil {
		w.drafts.Release(d)
		metrics.BookingCreateFailures.Inc()
		w.log.ErrorContext(ctx, "booking: create failed after payment", "draft_id", d.ID, "payment_id", d.PaymentID, "error", err)
		return model.Booking{}, apperror.Remote(gateway.UserMessage(err), err)
	}

	w.drafts.Discard(d.ID)
	metrics.BookingsCreated.Inc()
	w.log.InfoContext(ctx, "booking: confirmed", "booking_id", b.ID, "draft_id", d.ID, "payment_id", d.PaymentID)
	w.publish(ctx, id, d, b)
	return b, nil
}

// publish fires booking.confirmed without holding up the response.
func (w *Workflow) publish(ctx context.Context, id *model.Identity, d model.BookingDraft, b model.Booking) {
	if w.events == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:        b.ID,
		UserID:           id.ID,
		UserEmail:        id.Email,
		ExperienceID:     d.ExperienceID,
		ExperienceName:   d.ExperienceName,
		HostID:           d.HostID,
		Date:             d.Date.Format(DateLayout),
		Participants:     d.Participants,
		TotalAmountCents: int64(d.TotalAmount),
		PaymentID:        d.PaymentID,
		IdempotencyKey:   d.IdempotencyKey,
		ConfirmedAt:      w.now().UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := w.events.PublishBookingConfirmed(pctx, ev); err != nil {
			w.log.WarnContext(pctx, "booking: publish booking.confirmed failed", "booking_id", b.ID, "error", err)
		}
	}()
}

// Confirmation fetches a created booking for its owner (or an admin).
// Anything else reads as not found.
func (w *Workflow) Confirmation(ctx context.Context, id *model.Identity, bookingID string) (model.Booking, error) {
	if id == nil {
		return model.Booking{}, apperror.AuthRequired("/booking-success/" + bookingID)
	}
	b, err := w.bookings.Get(ctx, bookingID)
	if errors.Is(err, gateway.ErrNotFound) {
		return model.Booking{}, apperror.NotFound("booking not found", ListingPath)
	}
	if err != nil {
		return model.Booking{}, apperror.Remote(gateway.UserMessage(err), err)
	}
	if b.UserID != "" && b.UserID != id.ID && !id.IsAdmin {
		return model.Booking{}, apperror.NotFound("booking not found", ListingPath)
	}
	return b, nil
}

// PurgeExpired drops abandoned drafts and logs any that had been charged.
func (w *Workflow) PurgeExpired(ctx context.Context) int {
	purged := w.drafts.Purge()
	for _, d := range purged {
		if d.PaymentID != "" {
			w.log.ErrorContext(ctx, "booking: expired draft holds a captured payment",
				"draft_id", d.ID, "payment_id", d.PaymentID, "owner_id", d.OwnerID, "idempotency_key", d.IdempotencyKey)
		}
	}
	return len(purged)
}
