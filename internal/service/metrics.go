package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_bookings_created_total",
			Help: "Bookings written to the ledger, by booking type and origin",
		},
		[]string{"type", "origin"},
	)
	bookingsCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_bookings_cancelled_total",
			Help: "Bookings cancelled by members",
		},
	)
	waitlistJoinedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_waitlist_joined_total",
			Help: "Booking requests that landed on a waitlist because the session was full",
		},
	)
	waitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_waitlist_promotions_total",
			Help: "Waitlist entries converted into bookings after a cancellation",
		},
	)
	waitlistExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_waitlist_expired_total",
			Help: "Waiting entries expired by the cleanup job",
		},
	)
	recurringSessionsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_recurring_sessions_skipped_total",
			Help: "Recurring sessions skipped because the session was already full",
		},
	)
)
