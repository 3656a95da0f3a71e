// Package partition enumerates the set partitions of a collection lazily.
// The number of partitions of n elements is the Bell number B(n), which grows
// faster than exponentially, so partitions are produced one at a time through
// an iterator and never materialised as a whole.
package partition
