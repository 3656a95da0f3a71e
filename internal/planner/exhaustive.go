package planner

import (
	"context"
	"fmt"

	"github.com/eugenenazirov/trip-planner/internal/partition"
)

// ExhaustiveName identifies the exhaustive solver in reports and metrics.
const ExhaustiveName = "exhaustive"

// contextCheckInterval is how many partitions are examined between context checks.
const contextCheckInterval = 1 << 10

// ExhaustiveOption configures the exhaustive solver.
type ExhaustiveOption func(*exhaustiveSolver)

// WithPartitionLimit caps the number of partitions examined before the search
// gives up with ErrSearchBudgetExceeded. Zero means no limit.
func WithPartitionLimit(limit uint64) ExhaustiveOption {
	return func(s *exhaustiveSolver) {
		s.partitionLimit = limit
	}
}

type exhaustiveSolver struct {
	partitionLimit uint64
}

// NewExhaustive creates a Solver that examines every partition of the items
// and returns a feasible one with the fewest trips. Its cost grows with the
// Bell number of the item count; bound it with WithPartitionLimit or a
// context deadline.
func NewExhaustive(opts ...ExhaustiveOption) Solver {
	s := &exhaustiveSolver{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *exhaustiveSolver) Name() string {
	return ExhaustiveName
}

func (s *exhaustiveSolver) Plan(ctx context.Context, items Items, capacity int) (Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchBudgetExceeded, err)
	}
	if err := Validate(items, capacity); err != nil {
		return nil, err
	}

	names := items.Names()
	if len(names) == 0 {
		return Solution{}, nil
	}

	weights := make([]int, len(names))
	indices := make([]int, len(names))
	for i, name := range names {
		weights[i] = items[name]
		indices[i] = i
	}
	floor := minimumTrips(items.TotalWeight(), capacity)

	var (
		best     [][]int
		examined uint64
	)
	for p := range partition.All(indices) {
		examined++
		if s.partitionLimit > 0 && examined > s.partitionLimit {
			return nil, fmt.Errorf("%w: examined more than %d partitions", ErrSearchBudgetExceeded, s.partitionLimit)
		}
		if examined%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrSearchBudgetExceeded, err)
			}
		}

		if best != nil && len(p) >= len(best) {
			continue
		}
		if !fits(p, weights, capacity) {
			continue
		}
		best = p
		if len(best) <= floor {
			break
		}
	}

	if best == nil {
		return nil, ErrNoFeasiblePlan
	}

	solution := make(Solution, len(best))
	for i, block := range best {
		trip := make(Trip, len(block))
		for j, idx := range block {
			trip[j] = names[idx]
		}
		solution[i] = trip
	}
	return solution, nil
}

// fits counts down the remaining capacity of each block so that heavy items
// never overflow a running sum.
func fits(p [][]int, weights []int, capacity int) bool {
	for _, block := range p {
		avail := capacity
		for _, idx := range block {
			if weights[idx] > avail {
				return false
			}
			avail -= weights[idx]
		}
	}
	return true
}

// minimumTrips is a lower bound on the trip count of any feasible plan for a
// non-empty item set.
func minimumTrips(total, capacity int) int {
	if capacity <= 0 || total <= 0 {
		return 1
	}
	trips := total / capacity
	if total%capacity != 0 {
		trips++
	}
	return max(1, trips)
}
