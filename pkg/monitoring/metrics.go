package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_attempts_total",
			Help: "Booking attempts by result",
		},
		[]string{"result"},
	)

	webhookResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Processed payment webhooks by outcome",
		},
		[]string{"outcome"},
	)

	ordersExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_expired_total",
			Help: "Pending orders failed by the expiry sweep",
		},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Issued tickets created on paid orders",
		},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_checkins_total",
			Help: "Check-in attempts by result",
		},
		[]string{"result"},
	)
)

func RecordBooking(result string) {
	bookingAttempts.WithLabelValues(result).Inc()
}

func RecordWebhook(outcome string) {
	webhookResults.WithLabelValues(outcome).Inc()
}

func RecordExpired(n int) {
	ordersExpired.Add(float64(n))
}

func RecordTicketsIssued(n int) {
	ticketsIssued.Add(float64(n))
}

func RecordCheckIn(result string) {
	checkIns.WithLabelValues(result).Inc()
}
