package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for remote API calls.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "idcard",
		Name:      "api_requests_total",
		Help:      "Remote API calls by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	apiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "idcard",
		Name:      "api_request_duration_seconds",
		Help:      "Remote API call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	workspaces = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "idcard",
		Name:      "workspaces_active",
		Help:      "Visitor workspaces held in memory.",
	})

	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "idcard",
		Name:      "registrations_total",
		Help:      "Confirmed registration submissions by result.",
	}, []string{"result"})
)

// ObserveAPI records one remote API call.
func ObserveAPI(endpoint, outcome string, took time.Duration) {
	apiRequests.WithLabelValues(endpoint, outcome).Inc()
	apiDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

// SetWorkspaces sets the number of live workspaces.
func SetWorkspaces(n int) {
	workspaces.Set(float64(n))
}

// CountRegistration records a submission result ("success" or "failure").
func CountRegistration(result string) {
	registrations.WithLabelValues(result).Inc()
}
