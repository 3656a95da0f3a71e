package compare

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/trip-planner/internal/metrics"
	"github.com/eugenenazirov/trip-planner/internal/partition"
	"github.com/eugenenazirov/trip-planner/internal/planner"
)

// Result is the outcome of one solver run.
type Result struct {
	Solver   string           `json:"solver"`
	Trips    int              `json:"trips"`
	Solution planner.Solution `json:"solution"`
	Elapsed  time.Duration    `json:"-"`
}

// Report collects the results of every solver for one input.
type Report struct {
	Capacity int      `json:"capacity"`
	Items    int      `json:"items"`
	Results  []Result `json:"results"`
}

// Delta is the elapsed time of the last solver minus that of the first.
func (r Report) Delta() time.Duration {
	if len(r.Results) < 2 {
		return 0
	}
	return r.Results[len(r.Results)-1].Elapsed - r.Results[0].Elapsed
}

// maxLoggedPartitionItems is the largest item count whose partition count is
// included in the start log entry.
const maxLoggedPartitionItems = 64

// Option configures a Harness.
type Option func(*Harness)

// WithSolvers replaces the default greedy and exhaustive solvers.
func WithSolvers(solvers ...planner.Solver) Option {
	return func(h *Harness) {
		h.solvers = solvers
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(h *Harness) {
		h.clock = clock
	}
}

// WithMetrics records every solver run on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Harness) {
		h.metrics = m
	}
}

// Harness runs solvers one after another on identical input.
type Harness struct {
	solvers []planner.Solver
	clock   func() time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a Harness comparing the greedy and exhaustive solvers.
func New(logger *zap.Logger, opts ...Option) *Harness {
	h := &Harness{
		solvers: []planner.Solver{planner.NewGreedy(), planner.NewExhaustive()},
		clock:   time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run plans items with every solver in turn. Each solver receives its own
// copy of items. The first failure aborts the comparison.
func (h *Harness) Run(ctx context.Context, items planner.Items, capacity int) (Report, error) {
	h.logStart(len(items), capacity)

	report := Report{
		Capacity: capacity,
		Items:    len(items),
		Results:  make([]Result, 0, len(h.solvers)),
	}
	for _, solver := range h.solvers {
		start := h.clock()
		solution, err := solver.Plan(ctx, items.Clone(), capacity)
		elapsed := h.clock().Sub(start)

		h.metrics.ObserveSolve(solver.Name(), elapsed, solution.Len(), err)
		if err != nil {
			h.logger.Warn("solver failed",
				zap.String("solver", solver.Name()),
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
			return Report{}, fmt.Errorf("%s solver: %w", solver.Name(), err)
		}
		if err := planner.Check(items, capacity, solution); err != nil {
			return Report{}, fmt.Errorf("%s solver: %w", solver.Name(), err)
		}

		h.logger.Info("solver finished",
			zap.String("solver", solver.Name()),
			zap.Int("trips", solution.Len()),
			zap.Duration("elapsed", elapsed),
		)
		report.Results = append(report.Results, Result{
			Solver:   solver.Name(),
			Trips:    solution.Len(),
			Solution: solution,
			Elapsed:  elapsed,
		})
	}

	return report, nil
}

// logStart reports the size of the exhaustive search space. The Bell number is
// only computed when the entry is actually written and the item count is small
// enough for it to be cheap.
func (h *Harness) logStart(items, capacity int) {
	ce := h.logger.Check(zap.InfoLevel, "comparison started")
	if ce == nil {
		return
	}
	fields := []zap.Field{
		zap.Int("items", items),
		zap.Int("capacity", capacity),
	}
	if items <= maxLoggedPartitionItems {
		fields = append(fields, zap.Stringer("partitions", partition.Bell(items)))
	}
	ce.Write(fields...)
}

// WriteReport prints each solver's trips, trip count and elapsed time,
// followed by the time difference between the last and first solver.
func WriteReport(w io.Writer, report Report) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d items, capacity %d\n", report.Items, report.Capacity)
	for _, res := range report.Results {
		fmt.Fprintf(bw, "\n%s: %d trips in %.6fs\n", res.Solver, res.Trips, res.Elapsed.Seconds())
		for i, trip := range res.Solution {
			fmt.Fprintf(bw, "  trip %d: %s\n", i+1, strings.Join(trip, ", "))
		}
	}
	if n := len(report.Results); n >= 2 {
		fmt.Fprintf(bw, "\n%s took %.6fs longer than %s\n",
			report.Results[n-1].Solver, report.Delta().Seconds(), report.Results[0].Solver)
	}
	return bw.Flush()
}
