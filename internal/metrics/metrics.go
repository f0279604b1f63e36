// Package metrics exposes the Prometheus collectors used by taskdeck.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "taskdeck"

	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelAction    = "action"
)

// Outcomes of a backend request.
const (
	OutcomeSuccess        = "success"
	OutcomeNotFound       = "not_found"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
)

var BackendRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "backend_requests_total",
		Help:      "Requests sent to the task backend",
		Namespace: Namespace,
	},
	[]string{LabelOperation, LabelOutcome},
)

var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of requests sent to the task backend",
		Namespace: Namespace,
		Buckets:   prometheus.DefBuckets,
	},
	[]string{LabelOperation},
)

var ViewActions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "view_actions_total",
		Help:      "User actions dispatched to task views",
		Namespace: Namespace,
	},
	[]string{LabelAction, LabelOutcome},
)

var Sessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name:      "sessions",
		Help:      "Browser sessions currently holding a task view",
		Namespace: Namespace,
	},
)

func ObserveBackendRequest(operation, outcome string, elapsed time.Duration) {
	BackendRequests.WithLabelValues(operation, outcome).Inc()
	BackendRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func ObserveViewAction(action string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = "failure"
	}
	ViewActions.WithLabelValues(action, outcome).Inc()
}
