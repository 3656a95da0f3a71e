package planner

import (
	"context"
	"maps"
	"math"
	"slices"
)

// Items maps an item name to its weight.
type Items map[string]int

// Clone returns a copy of the item set.
func (it Items) Clone() Items {
	if it == nil {
		return Items{}
	}
	return maps.Clone(it)
}

// Names returns the item names in ascending order.
func (it Items) Names() []string {
	return slices.Sorted(maps.Keys(it))
}

// TotalWeight sums the weight of every item, saturating at math.MaxInt.
func (it Items) TotalWeight() int {
	total := 0
	for _, w := range it {
		total = addWeight(total, w)
	}
	return total
}

// Trip holds the names of the items carried together.
type Trip []string

// Weight sums the weights of the trip's items as recorded in items,
// saturating at math.MaxInt.
func (t Trip) Weight(items Items) int {
	total := 0
	for _, name := range t {
		total = addWeight(total, items[name])
	}
	return total
}

// Fits reports whether the trip's items weigh no more than capacity in total.
// Unlike comparing Weight against capacity it stays exact when the sum would
// overflow an int.
func (t Trip) Fits(items Items, capacity int) bool {
	avail := capacity
	for _, name := range t {
		w := items[name]
		if w > avail {
			return false
		}
		avail -= w
	}
	return true
}

func addWeight(total, w int) int {
	if w > 0 && total > math.MaxInt-w {
		return math.MaxInt
	}
	return total + w
}

// Solution is the ordered list of trips produced by a solver.
type Solution []Trip

// Len reports the number of trips.
func (s Solution) Len() int {
	return len(s)
}

// Solver describes the behaviour required from a trip planner.
type Solver interface {
	Name() string
	Plan(ctx context.Context, items Items, capacity int) (Solution, error)
}
