// Package metrics exposes Prometheus instrumentation for solver runs.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eugenenazirov/trip-planner/internal/planner"
)

// Outcome labels recorded for every solver run.
const (
	OutcomeOK             = "ok"
	OutcomeInvalidInput   = "invalid_input"
	OutcomeUnplaceable    = "unplaceable"
	OutcomeBudgetExceeded = "budget_exceeded"
	OutcomeError          = "error"
)

// Metrics holds the collectors registered for the planner.
type Metrics struct {
	SolverRuns     *prometheus.CounterVec
	SolverDuration *prometheus.HistogramVec
	SolverTrips    *prometheus.HistogramVec
}

// New registers the planner collectors on registry.
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		SolverRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trip_planner_solver_runs_total",
				Help: "Total number of solver runs by outcome",
			},
			[]string{"solver", "outcome"},
		),
		SolverDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trip_planner_solver_duration_seconds",
				Help:    "Solver run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 10, 8),
			},
			[]string{"solver"},
		),
		SolverTrips: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trip_planner_solver_trips",
				Help:    "Number of trips in successful solver plans",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
			[]string{"solver"},
		),
	}
}

// ObserveSolve records a single solver run. A nil receiver is a no-op.
func (m *Metrics) ObserveSolve(solver string, elapsed time.Duration, trips int, err error) {
	if m == nil {
		return
	}

	outcome := Outcome(err)
	m.SolverRuns.WithLabelValues(solver, outcome).Inc()
	m.SolverDuration.WithLabelValues(solver).Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		m.SolverTrips.WithLabelValues(solver).Observe(float64(trips))
	}
}

// Outcome classifies a solver error into a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, planner.ErrUnplaceableItem):
		return OutcomeUnplaceable
	case errors.Is(err, planner.ErrSearchBudgetExceeded):
		return OutcomeBudgetExceeded
	case errors.Is(err, planner.ErrInvalidCapacity), errors.Is(err, planner.ErrInvalidWeight):
		return OutcomeInvalidInput
	default:
		return OutcomeError
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

