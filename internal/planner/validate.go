package planner

import (
	"fmt"
	"strings"
)

// Validate checks the preconditions shared by every solver: the capacity is
// non-negative and every item weighs between zero and the capacity.
func Validate(items Items, capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	for _, name := range items.Names() {
		w := items[name]
		if w < 0 {
			return fmt.Errorf("%w: %q weighs %d", ErrInvalidWeight, name, w)
		}
		if w > capacity {
			return fmt.Errorf("%w: %q weighs %d, capacity is %d", ErrUnplaceableItem, name, w, capacity)
		}
	}
	return nil
}

// Normalize returns a copy of items with surrounding whitespace trimmed from
// every name. Empty names and names that collide after trimming are rejected.
func Normalize(items Items) (Items, error) {
	out := make(Items, len(items))
	for _, raw := range items.Names() {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, raw)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("%w: %q appears more than once", ErrInvalidName, name)
		}
		out[name] = items[raw]
	}
	return out, nil
}

// Check verifies that solution carries every item exactly once and that no
// trip exceeds capacity.
func Check(items Items, capacity int, solution Solution) error {
	seen := make(map[string]struct{}, len(items))
	for i, trip := range solution {
		if len(trip) == 0 {
			return fmt.Errorf("%w: trip %d is empty", ErrInvalidSolution, i+1)
		}
		for _, name := range trip {
			if _, ok := items[name]; !ok {
				return fmt.Errorf("%w: trip %d carries unknown item %q", ErrInvalidSolution, i+1, name)
			}
			if _, dup := seen[name]; dup {
				return fmt.Errorf("%w: item %q is carried more than once", ErrInvalidSolution, name)
			}
			seen[name] = struct{}{}
		}
		if !trip.Fits(items, capacity) {
			return fmt.Errorf("%w: trip %d weighs more than capacity %d", ErrInvalidSolution, i+1, capacity)
		}
	}
	if len(seen) != len(items) {
		for _, name := range items.Names() {
			if _, ok := seen[name]; !ok {
				return fmt.Errorf("%w: item %q is never carried", ErrInvalidSolution, name)
			}
		}
	}
	return nil
}
