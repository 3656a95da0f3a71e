package planner

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

// GreedyName identifies the greedy solver in reports and metrics.
const GreedyName = "greedy"

type greedySolver struct{}

// NewGreedy creates a Solver that fills each trip with the heaviest remaining
// item that still fits until nothing else does. It is fast but may use more
// trips than necessary.
func NewGreedy() Solver {
	return &greedySolver{}
}

func (g *greedySolver) Name() string {
	return GreedyName
}

func (g *greedySolver) Plan(ctx context.Context, items Items, capacity int) (Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := Validate(items, capacity); err != nil {
		return nil, err
	}

	remaining := heaviestFirst(items)
	solution := Solution{}
	for len(remaining) > 0 {
		avail := capacity
		trip := Trip{}
		leftover := make([]weighted, 0, len(remaining))

		// remaining is ordered heaviest first and avail only shrinks, so a
		// single pass picks the heaviest fitting item at every step.
		for _, it := range remaining {
			if it.weight <= avail {
				trip = append(trip, it.name)
				avail -= it.weight
				continue
			}
			leftover = append(leftover, it)
		}

		if len(trip) == 0 {
			return nil, fmt.Errorf("%w: %q weighs %d, capacity is %d", ErrUnplaceableItem, leftover[0].name, leftover[0].weight, capacity)
		}
		solution = append(solution, trip)
		remaining = leftover
	}

	return solution, nil
}

type weighted struct {
	name   string
	weight int
}

// heaviestFirst copies items into a slice ordered by weight descending, ties
// broken by name so that repeated runs choose the same items.
func heaviestFirst(items Items) []weighted {
	out := make([]weighted, 0, len(items))
	for name, w := range items {
		out = append(out, weighted{name: name, weight: w})
	}
	slices.SortFunc(out, func(a, b weighted) int {
		if c := cmp.Compare(b.weight, a.weight); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return out
}
