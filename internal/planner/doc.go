// Package planner splits a set of weighted items into the fewest trips whose
// total weight stays within a fixed capacity. Two solvers are provided: a
// greedy heuristic that always loads the heaviest item that still fits, and
// an exhaustive search over every set partition that is guaranteed optimal.
package planner
