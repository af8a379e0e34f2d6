// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedQueue is the durable queue booking confirmations go to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published once a paid booking has been created by
// the backend. It carries enough for downstream consumers to log, notify the
// host, or feed analytics without calling the backend again.
type BookingConfirmedEvent struct {
	BookingID        string `json:"booking_id"`
	UserID           string `json:"user_id"`
	UserEmail        string `json:"user_email,omitempty"`
	ExperienceID     string `json:"experience_id"`
	ExperienceName   string `json:"experience_name"`
	HostID           string `json:"host_id,omitempty"`
	Date             string `json:"date"`
	Participants     int    `json:"participants"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	PaymentID        string `json:"payment_id"`
	IdempotencyKey   string `json:"idempotency_key"`
	ConfirmedAt      string `json:"confirmed_at"`
}
