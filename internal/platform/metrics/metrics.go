package metrics

import (
	"errors"
	"route-planner-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	planRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_runs_total",
			Help: "Planning runs by result",
		},
		[]string{"result"},
	)

	plannedRoutesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_routes_total",
			Help: "Routes produced by planning runs",
		},
	)

	unassignedDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_unassigned_drops_total",
			Help: "Drops that could not be placed on any route",
		},
	)

	optimizationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planner_optimization_score",
			Help:    "Optimization score of completed planning runs",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	assignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assignments_total",
			Help: "Assignment operations by action and result",
		},
		[]string{"action", "result"},
	)

	NotifyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_failures_total",
			Help: "Notifications that could not be handed to the dispatcher",
		},
		[]string{"kind"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0: Closed, 1: Half-Open, 2: Open)",
		},
		[]string{"name"},
	)

	CatalogEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_entries",
			Help: "Entries in the loaded item catalog",
		},
	)
)

func ObservePlanRun(err error) {
	planRunsTotal.WithLabelValues(resultLabel(err)).Inc()
}

func ObservePlanResult(routes, unassigned int, score float64) {
	plannedRoutesTotal.Add(float64(routes))
	unassignedDropsTotal.Add(float64(unassigned))
	optimizationScore.Observe(score)
}

func ObserveAssignment(action string, err error) {
	assignmentsTotal.WithLabelValues(action, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrDataIntegrity):
		return "data_integrity"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrDriverUnavailable):
		return "driver_unavailable"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "error"
	}
}
