package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the portal.
type Metrics struct {
	VotesAccepted      prometheus.Counter
	VotesRejected      *prometheus.CounterVec
	SubmissionsStored  *prometheus.CounterVec
	SubmissionsFailed  prometheus.Counter
	RateLimited        prometheus.Counter
	RequestDurationSec *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		VotesAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "curia_votes_accepted_total",
			Help: "Total number of accepted vote submissions",
		}),
		VotesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "curia_votes_rejected_total",
			Help: "Total number of rejected vote submissions by reason",
		}, []string{"reason"}),
		SubmissionsStored: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "curia_submissions_stored_total",
			Help: "Total number of stored form submissions by form",
		}, []string{"form"}),
		SubmissionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "curia_submissions_failed_total",
			Help: "Total number of form submissions that failed to persist",
		}),
		RateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "curia_rate_limited_total",
			Help: "Total number of requests answered 429",
		}),
		RequestDurationSec: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "curia_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "status"}),
	}
}

// IncVoteRejected increments the rejection counter for a reason label.
func (m *Metrics) IncVoteRejected(reason string) {
	m.VotesRejected.WithLabelValues(reason).Inc()
}

// IncSubmissionStored increments the stored-submission counter for a form.
func (m *Metrics) IncSubmissionStored(form string) {
	m.SubmissionsStored.WithLabelValues(form).Inc()
}
