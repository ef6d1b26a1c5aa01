package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_purchases_total",
			Help: "Purchase attempts by outcome",
		},
		[]string{"outcome"},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketing_tickets_issued_total",
			Help: "Tickets issued by committed purchases",
		},
	)

	purchaseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticketing_purchase_duration_seconds",
			Help:    "Duration of the purchase transaction",
			Buckets: prometheus.DefBuckets,
		},
	)

	transferTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_transfer_transitions_total",
			Help: "Transfer state transitions by resulting status",
		},
		[]string{"status"},
	)

	dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_dispatch_total",
			Help: "Notification and domain event deliveries by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	dispatchQueue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ticketing_dispatch_queue_length",
			Help: "Deliveries waiting in the dispatcher buffer",
		},
	)
)

func ObservePurchase(outcome string, started time.Time, tickets int) {
	purchases.WithLabelValues(outcome).Inc()
	purchaseDuration.Observe(time.Since(started).Seconds())
	if tickets > 0 {
		ticketsIssued.Add(float64(tickets))
	}
}

func TransferTransition(status string) {
	transferTransitions.WithLabelValues(status).Inc()
}

func Dispatch(kind, outcome string) {
	dispatches.WithLabelValues(kind, outcome).Inc()
}

func DispatchQueueLength(n int) {
	dispatchQueue.Set(float64(n))
}
