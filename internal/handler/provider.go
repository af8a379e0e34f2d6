package handler

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/tourism-portal/internal/apperror"
	"github.com/iliyamo/tourism-portal/internal/gateway"
	"github.com/iliyamo/tourism-portal/internal/middleware"
	"github.com/iliyamo/tourism-portal/internal/model"
)

const (
	providerExperiencesPath = "/guide/experiences"
	providerBookingsPath    = "/guide/bookings"
)

// ProviderHandler serves the /guide screens. Every record is checked
// against the caller so one guide never sees another guide's data.
type ProviderHandler struct {
	API *gateway.Client
	Log *slog.Logger
	now func() time.Time
}

func NewProviderHandler(api *gateway.Client, log *slog.Logger) *ProviderHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ProviderHandler{API: api, Log: log, now: time.Now}
}

// ProviderSummary is the dashboard's headline figures.
type ProviderSummary struct {
	Experiences int         `json:"experiences"`
	Bookings    int         `json:"bookings"`
	Upcoming    int         `json:"upcoming"`
	Revenue     model.Money `json:"revenue"`
}

// summarize counts revenue from confirmed and completed bookings and
// upcoming from confirmed ones dated today or later.
func summarize(exps []model.Experience, bookings []model.Booking, now time.Time) ProviderSummary {
	s := ProviderSummary{Experiences: len(exps), Bookings: len(bookings)}
	today := now.UTC().Truncate(24 * time.Hour)
	for _, b := range bookings {
		switch b.Status {
		case model.BookingConfirmed:
			s.Revenue += b.TotalAmount
			if !b.Date.Before(today) {
				s.Upcoming++
			}
		case model.BookingCompleted:
			s.Revenue += b.TotalAmount
		}
	}
	return s
}

func (h *ProviderHandler) load(ctx context.Context, hostID string) ([]model.Experience, []model.Booking, error) {
	var (
		exps     []model.Experience
		bookings []model.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		exps, err = h.API.Experiences.List(gctx, model.ExperienceFilter{HostID: hostID})
		return err
	})
	g.Go(func() error {
		var err error
		bookings, err = h.API.Bookings.ForProvider(gctx, hostID)
		return err
	})
	err := g.Wait()
	return exps, bookings, err
}

// Dashboard shows the guide's figures and most recent bookings.
func (h *ProviderHandler) Dashboard(c echo.Context) error {
	id, err := signedIn(c)
	if err != nil {
		return fail(c, h.Log, "guide-dashboard", err)
	}
	exps, bookings, err := h.load(middleware.GatewayContext(c), id.ID)
	if err != nil {
		return fail(c, h.Log, "guide-dashboard", remote(err))
	}
	sort.SliceStable(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })
	return render(c, "guide-dashboard", echo.Map{
		"summary":        summarize(exps, bookings, h.now()),
		"recentBookings": head(bookings, 5),
	})
}

// Experiences lists the guide's experiences.
func (h *ProviderHandler) Experiences(c echo.Context) error {
	id, err := signedIn(c)
	if err != nil {
		return fail(c, h.Log, "guide-experiences", err)
	}
	exps, err := h.API.Experiences.List(middleware.GatewayContext(c), model.ExperienceFilter{HostID: id.ID})
	if err != nil {
		return fail(c, h.Log, "guide-experiences", remote(err))
	}
	return render(c, "guide-experiences", orEmpty(exps))
}

// NewExperience renders an empty experience form.
func (h *ProviderHandler) NewExperience(c echo.Context) error {
	return render(c, "guide-experience-new", model.ExperienceInput{MaxParticipants: model.DefaultMaxParticipants})
}

// owned loads an experience of the caller.
func (h *ProviderHandler) owned(c echo.Context, expID string) (model.Experience, error) {
	id, err := signedIn(c)
	if err != nil {
		return model.Experience{}, err
	}
	exp, err := h.API.Experiences.Get(middleware.GatewayContext(c), expID)
	if err != nil {
		return model.Experience{}, lookup(err, "experience", providerExperiencesPath)
	}
	if err := requireOwner(id, exp.HostID, "experience", providerExperiencesPath); err != nil {
		return model.Experience{}, err
	}
	return exp, nil
}

// EditExperience renders the form for one of the guide's experiences.
func (h *ProviderHandler) EditExperience(c echo.Context) error {
	exp, err := h.owned(c, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, "guide-experience-edit", err)
	}
	return render(c, "guide-experience-edit", exp)
}

// CreateExperience publishes a new experience hosted by the caller.
func (h *ProviderHandler) CreateExperience(c echo.Context) error {
	id, err := signedIn(c)
	if err != nil {
		return fail(c, h.Log, "guide-experience-new", err)
	}
	var in model.ExperienceInput
	if err := bindForm(c, &in); err != nil {
		return fail(c, h.Log, "guide-experience-new", err)
	}
	in.HostID = id.ID
	exp, err := h.API.Experiences.Create(middleware.GatewayContext(c), in)
	if err != nil {
		return fail(c, h.Log, "guide-experience-new", remote(err))
	}
	h.Log.InfoContext(c.Request().Context(), "guide: experience created", "experience_id", exp.ID, "host_id", id.ID)
	return seeOther(c, providerExperiencesPath)
}

// UpdateExperience saves changes to one of the guide's experiences. The
// host cannot be reassigned.
func (h *ProviderHandler) UpdateExperience(c echo.Context) error {
	exp, err := h.owned(c, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, "guide-experience-edit", err)
	}
	var in model.ExperienceInput
	if err := bindForm(c, &in); err != nil {
		return fail(c, h.Log, "guide-experience-edit", err)
	}
	in.HostID = exp.HostID
	if _, err := h.API.Experiences.Update(middleware.GatewayContext(c), exp.ID, in); err != nil {
		return fail(c, h.Log, "guide-experience-edit", remote(err))
	}
	return seeOther(c, providerExperiencesPath)
}

// DeleteExperience removes one of the guide's experiences.
func (h *ProviderHandler) DeleteExperience(c echo.Context) error {
	exp, err := h.owned(c, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, "guide-experiences", err)
	}
	if err := h.API.Experiences.Delete(middleware.GatewayContext(c), exp.ID); err != nil {
		return fail(c, h.Log, "guide-experiences", remote(err))
	}
	return seeOther(c, providerExperiencesPath)
}

// Bookings lists bookings made on the guide's experiences, optionally
// narrowed by ?status=.
func (h *ProviderHandler) Bookings(c echo.Context) error {
	id, err := signedIn(c)
	if err != nil {
		return fail(c, h.Log, "guide-bookings", err)
	}
	bookings, err := h.API.Bookings.ForProvider(middleware.GatewayContext(c), id.ID)
	if err != nil {
		return fail(c, h.Log, "guide-bookings", remote(err))
	}
	if st := model.BookingStatus(c.QueryParam("status")); st.Valid() {
		kept := bookings[:0]
		for _, b := range bookings {
			if b.Status == st {
				kept = append(kept, b)
			}
		}
		bookings = kept
	}
	return render(c, "guide-bookings", orEmpty(bookings))
}

// ownedBooking loads a booking made on one of the caller's experiences.
func (h *ProviderHandler) ownedBooking(c echo.Context, bookingID string) (model.Booking, error) {
	id, err := signedIn(c)
	if err != nil {
		return model.Booking{}, err
	}
	ctx := middleware.GatewayContext(c)
	b, err := h.API.Bookings.Get(ctx, bookingID)
	if err != nil {
		return model.Booking{}, lookup(err, "booking", providerBookingsPath)
	}
	hostID := ""
	if b.Experience != nil {
		hostID = b.Experience.HostID
	}
	if hostID == "" {
		exp, err := h.API.Experiences.Get(ctx, b.ExperienceID)
		if err != nil {
			return model.Booking{}, lookup(err, "booking", providerBookingsPath)
		}
		hostID = exp.HostID
		b.Experience = &exp
	}
	if err := requireOwner(id, hostID, "booking", providerBookingsPath); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// Booking shows one booking on the guide's experiences.
func (h *ProviderHandler) Booking(c echo.Context) error {
	b, err := h.ownedBooking(c, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, "guide-booking", err)
	}
	return render(c, "guide-booking", b)
}

type bookingStatusForm struct {
	Status model.BookingStatus `json:"status" form:"status" validate:"required,oneof=pending confirmed cancelled completed"`
}

// UpdateBookingStatus moves a booking to another status.
func (h *ProviderHandler) UpdateBookingStatus(c echo.Context) error {
	var f bookingStatusForm
	if err := bindForm(c, &f); err != nil {
		return fail(c, h.Log, "guide-booking", err)
	}
	b, err := h.ownedBooking(c, c.Param("id"))
	if err != nil {
		return fail(c, h.Log, "guide-booking", err)
	}
	if b.Status == model.BookingCancelled && f.Status != model.BookingCancelled {
		return fail(c, h.Log, "guide-booking", apperror.Validation("A cancelled booking cannot be reopened.",
			map[string]string{"status": "Booking is cancelled"}))
	}
	if _, err := h.API.Bookings.Update(middleware.GatewayContext(c), b.ID, model.BookingUpdate{Status: &f.Status}); err != nil {
		return fail(c, h.Log, "guide-booking", remote(err))
	}
	h.Log.InfoContext(c.Request().Context(), "guide: booking status changed", "booking_id", b.ID, "status", f.Status)
	return seeOther(c, providerBookingsPath+"/"+b.ID)
}
