package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	BookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"outcome"},
	)
	BookingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_duration_seconds",
			Help:    "Duration of the booking check-and-commit section in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)
	PlanUpgradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_upgrades_total",
			Help: "Applied plan upgrades by target plan",
		},
		[]string{"plan"},
	)
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Received payment webhook events by type",
		},
		[]string{"event_type"},
	)
)

// Booking outcome label values.
const (
	OutcomeBooked    = "booked"
	OutcomeConflict  = "conflict"
	OutcomeQuota     = "quota_exceeded"
	OutcomeTrial     = "trial_expired"
	OutcomeContended = "contended"
	OutcomeError     = "error"
)

func InitMetrics() {
	for _, c := range []prometheus.Collector{
		BookingsTotal,
		BookingDuration,
		PlanUpgradesTotal,
		WebhookEventsTotal,
	} {
		if err := prometheus.Register(c); err != nil {
			log.Error().Err(err).Msg("failed to register metric")
		}
	}
}
