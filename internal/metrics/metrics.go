// Package metrics holds the Prometheus collectors of the portal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GuardDecisions counts route guard outcomes by decision ("allow",
	// "redirect:/login", "loading", ...).
	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourportal_guard_decisions_total",
		Help: "Route guard decisions by outcome",
	}, []string{"decision"})

	// GatewayRequestSeconds observes REST gateway latency by operation and outcome.
	GatewayRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tourportal_gateway_request_seconds",
		Help:    "Latency of calls to the REST backend",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"op", "outcome"})

	// SessionInitializations counts session initialisations by resulting state.
	SessionInitializations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourportal_session_initializations_total",
		Help: "Session store initialisations by resulting state",
	}, []string{"state"})

	// ActiveSessions is the number of client session stores held in memory.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tourportal_active_sessions",
		Help: "Client session stores currently held in memory",
	})

	// Payments counts payment attempts by result (captured, declined, error).
	Payments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourportal_payments_total",
		Help: "Payment attempts by result",
	}, []string{"result"})

	// BookingsCreated counts bookings materialised after payment.
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tourportal_bookings_created_total",
		Help: "Bookings created after a captured payment",
	})

	// BookingCreateFailures counts failed create calls that left a draft for retry.
	BookingCreateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tourportal_booking_create_failures_total",
		Help: "Booking create calls that failed after payment capture",
	})

	// DraftsActive is the number of booking drafts awaiting payment.
	DraftsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tourportal_booking_drafts_active",
		Help: "Booking drafts currently held in memory",
	})
)
