package handler

import (
	"log/slog"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-portal/internal/booking"
	"github.com/iliyamo/tourism-portal/internal/middleware"
	"github.com/iliyamo/tourism-portal/internal/payment"
)

// BookingHandler drives the select, pay and confirm screens.
type BookingHandler struct {
	Flow *booking.Workflow
	Log  *slog.Logger
}

func NewBookingHandler(flow *booking.Workflow, log *slog.Logger) *BookingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BookingHandler{Flow: flow, Log: log}
}

// Select renders the quote for ?participants=N (clamped, default 1).
func (h *BookingHandler) Select(c echo.Context) error {
	n, _ := strconv.Atoi(c.QueryParam("participants"))
	q, err := h.Flow.Select(middleware.GatewayContext(c), c.Param("id"), n)
	if err != nil {
		return fail(c, h.Log, "booking", err)
	}
	return render(c, "booking", q)
}

// Begin stores a draft for the selection and moves on to payment.
func (h *BookingHandler) Begin(c echo.Context) error {
	var sel booking.Selection
	if err := c.Bind(&sel); err != nil {
		return fail(c, h.Log, "booking", errUnreadableForm)
	}
	d, err := h.Flow.Begin(middleware.GatewayContext(c), middleware.IdentityFrom(c), c.Param("id"), sel)
	if err != nil {
		return fail(c, h.Log, "booking", err)
	}
	return seeOther(c, "/payment/"+d.ID)
}

// Payment renders the draft awaiting payment. A missing draft goes back to
// the listing.
func (h *BookingHandler) Payment(c echo.Context) error {
	d, err := h.Flow.Draft(middleware.IdentityFrom(c), c.Param("bookingId"))
	if err != nil {
		return fail(c, h.Log, "payment", err)
	}
	return render(c, "payment", echo.Map{
		"draft":    d,
		"captured": d.PaymentID != "",
	})
}

// Pay charges the card and creates the booking.
func (h *BookingHandler) Pay(c echo.Context) error {
	var card payment.Card
	if err := bindForm(c, &card); err != nil {
		return fail(c, h.Log, "payment", err)
	}
	b, err := h.Flow.Pay(middleware.GatewayContext(c), middleware.IdentityFrom(c), c.Param("bookingId"), card)
	if err != nil {
		return fail(c, h.Log, "payment", err)
	}
	return seeOther(c, "/booking-success/"+b.ID)
}

// Success renders the confirmation of a created booking.
func (h *BookingHandler) Success(c echo.Context) error {
	b, err := h.Flow.Confirmation(middleware.GatewayContext(c), middleware.IdentityFrom(c), c.Param("bookingId"))
	if err != nil {
		return fail(c, h.Log, "booking-success", err)
	}
	return render(c, "booking-success", b)
}
