package planner

import "errors"

var (
	// ErrInvalidCapacity is returned when the trip capacity is negative.
	ErrInvalidCapacity = errors.New("capacity must be a non-negative integer")
	// ErrInvalidWeight is returned when an item carries a negative weight.
	ErrInvalidWeight = errors.New("item weight must be a non-negative integer")
	// ErrInvalidName is returned when an item name is blank or duplicated once whitespace is trimmed.
	ErrInvalidName = errors.New("item names must be unique and non-blank")
	// ErrUnplaceableItem is returned when an item is heavier than the capacity and can never be loaded.
	ErrUnplaceableItem = errors.New("item exceeds trip capacity")
	// ErrSearchBudgetExceeded is returned when the exhaustive search is stopped by its partition limit or context.
	ErrSearchBudgetExceeded = errors.New("exhaustive search exceeded its budget")
	// ErrNoFeasiblePlan is returned when no partition of the items satisfies the capacity.
	ErrNoFeasiblePlan = errors.New("no feasible trip plan exists")
	// ErrInvalidSolution is returned by Check when a solution breaks the partition or capacity rules.
	ErrInvalidSolution = errors.New("solution is not a valid trip plan")
)
