package model

import "time"

// BookingStatus is the lifecycle state of a persisted booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Experience is a bookable tour offered by a provider.
type Experience struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Location        string    `json:"location,omitempty"`
	Category        string    `json:"category,omitempty"`
	Duration        float64   `json:"duration,omitempty"`
	Price           Money     `json:"price"`
	MaxParticipants int       `json:"maxParticipants"`
	Images          []string  `json:"images,omitempty"`
	HostID          string    `json:"hostId,omitempty"`
	Host            *User     `json:"host,omitempty"`
	Active          bool      `json:"active"`
	Rating          float64   `json:"rating,omitempty"`
	BookingsCount   int       `json:"bookingsCount,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

// DefaultMaxParticipants applies when an experience does not declare a limit.
const DefaultMaxParticipants = 10

// ParticipantLimit returns the upper bound on participants for a booking.
func (e Experience) ParticipantLimit() int {
	if e.MaxParticipants > 0 {
		return e.MaxParticipants
	}
	return DefaultMaxParticipants
}

// BookingDraft is an in-flight booking that has not been persisted. It lives
// only in memory and is handed from the selection step to the payment step.
// PaymentID is set once the payment collaborator captured the charge so a
// retried create does not charge twice.
type BookingDraft struct {
	ID             string    `json:"id"`
	IdempotencyKey string    `json:"idempotencyKey"`
	OwnerID        string    `json:"-"`
	ExperienceID   string    `json:"experienceId"`
	ExperienceName string    `json:"experienceName"`
	Date           time.Time `json:"date"`
	Participants   int       `json:"participants"`
	UnitPrice      Money     `json:"unitPrice"`
	TotalAmount    Money     `json:"totalAmount"`
	HostID         string    `json:"hostId,omitempty"`
	PaymentID      string    `json:"paymentId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Booking is the durable reservation record owned by the backend.
type Booking struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	ExperienceID   string        `json:"experienceId"`
	Experience     *Experience   `json:"experience,omitempty"`
	User           *User         `json:"user,omitempty"`
	Date           time.Time     `json:"date"`
	Participants   int           `json:"participants"`
	TotalAmount    Money         `json:"totalAmount"`
	Status         BookingStatus `json:"status"`
	PaymentID      string        `json:"paymentId,omitempty"`
	IdempotencyKey string        `json:"idempotencyKey,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"createdAt,omitempty"`
	UpdatedAt      time.Time     `json:"updatedAt,omitempty"`
}

// BookingCreate is the payload of the booking-create call.
type BookingCreate struct {
	UserID         string        `json:"userId"`
	ExperienceID   string        `json:"experienceId"`
	Date           time.Time     `json:"date"`
	Participants   int           `json:"participants"`
	TotalAmount    Money         `json:"totalAmount"`
	Status         BookingStatus `json:"status"`
	PaymentID      string        `json:"paymentId"`
	IdempotencyKey string        `json:"idempotencyKey"`
}

// BookingFilter narrows booking listings. Empty fields are omitted.
type BookingFilter struct {
	UserID       string
	ExperienceID string
	HostID       string
	Date         string
	Status       BookingStatus
	Limit        int
}

// BookingUpdate carries the fields an admin or provider may change on a
// booking. Nil fields are left untouched.
type BookingUpdate struct {
	Status       *BookingStatus `json:"status,omitempty"`
	Participants *int           `json:"participants,omitempty"`
	Date         *time.Time     `json:"date,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
}

// ExperienceInput is the create/update payload of an experience.
type ExperienceInput struct {
	Title           string   `json:"title,omitempty" validate:"required,min=3"`
	Description     string   `json:"description,omitempty" validate:"required,min=10"`
	Location        string   `json:"location,omitempty" validate:"required"`
	Category        string   `json:"category,omitempty" validate:"required"`
	Duration        float64  `json:"duration,omitempty" validate:"gt=0"`
	Price           Money    `json:"price" validate:"gte=0"`
	MaxParticipants int      `json:"maxParticipants,omitempty" validate:"gte=1"`
	Images          []string `json:"images,omitempty"`
	HostID          string   `json:"hostId,omitempty"`
	Active          *bool    `json:"active,omitempty"`
}

// ExperienceFilter narrows experience listings. Empty fields are omitted.
type ExperienceFilter struct {
	HostID   string
	Category string
	Location string
	Search   string
}
