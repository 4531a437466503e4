// Package metrics holds the Prometheus collectors of the tracker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AttemptsRecorded counts new attempts written to the ledger
	AttemptsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sptracker_attempts_recorded_total",
		Help: "Attempts recorded in the ledger, by tab.",
	}, []string{"tab"})

	// Reschedules counts pending revisions completed and rescheduled
	Reschedules = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sptracker_reschedules_total",
		Help: "Pending revisions marked done and rescheduled, by tab.",
	}, []string{"tab"})

	// IntervalDays observes the scheduled revision interval
	IntervalDays = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sptracker_revision_interval_days",
		Help:    "Days between a submission and its next revision.",
		Buckets: []float64{1, 2, 3, 5, 7, 10, 14, 21, 30, 60},
	})

	// OperationErrors counts failed operations by operation and error kind
	OperationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sptracker_operation_errors_total",
		Help: "Failed operations, by operation and error kind.",
	}, []string{"op", "kind"})

	// RequestDuration observes HTTP request latency
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sptracker_http_request_duration_seconds",
		Help:    "HTTP request latency, by method, route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// DigestsSent counts digests handed to the notifier
	DigestsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sptracker_digests_sent_total",
		Help: "Pending digests delivered, by tab.",
	}, []string{"tab"})
)
