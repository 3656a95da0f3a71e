package partition

import (
	"iter"
	"math/big"
	"slices"
)

// All returns a sequence of every partition of elems into non-empty, disjoint
// blocks whose union is elems. Partitions of the first n-1 elements are
// extended by placing the last element into each existing block in turn and
// finally into a block of its own, so every partition appears exactly once.
//
// Each call to the returned function starts a fresh enumeration. The outer
// slice of every yielded partition is newly allocated; blocks may be shared
// between partitions and must not be modified.
func All[T any](elems []T) iter.Seq[[][]T] {
	src := slices.Clone(elems)
	return func(yield func([][]T) bool) {
		generate(src, yield)
	}
}

func generate[T any](elems []T, yield func([][]T) bool) bool {
	if len(elems) == 0 {
		return yield([][]T{})
	}

	last := elems[len(elems)-1]
	return generate(elems[:len(elems)-1], func(smaller [][]T) bool {
		for i := range smaller {
			next := make([][]T, len(smaller))
			copy(next, smaller)
			next[i] = append(slices.Clip(smaller[i]), last)
			if !yield(next) {
				return false
			}
		}

		next := make([][]T, len(smaller), len(smaller)+1)
		copy(next, smaller)
		return yield(append(next, []T{last}))
	})
}

// Bell returns the number of partitions of a set with n elements.
func Bell(n int) *big.Int {
	if n < 0 {
		return big.NewInt(0)
	}

	// Bell triangle: each row starts with the last entry of the previous one.
	row := []*big.Int{big.NewInt(1)}
	for i := 0; i < n; i++ {
		next := make([]*big.Int, 0, len(row)+1)
		next = append(next, new(big.Int).Set(row[len(row)-1]))
		for _, v := range row {
			next = append(next, new(big.Int).Add(next[len(next)-1], v))
		}
		row = next
	}
	return row[0]
}
