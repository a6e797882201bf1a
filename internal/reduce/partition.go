package reduce

import (
	"github.com/example/dotprod/internal/failure"
)

// Partition is the half-open index range [Start, End) owned by worker ID.
type Partition struct {
	ID    int
	Start int
	End   int
}

// Len returns the number of elements in the partition.
func (p Partition) Len() int { return p.End - p.Start }

// EffectiveThreads clamps the requested worker count to the vector length.
func EffectiveThreads(requested, n int) int {
	return min(requested, n)
}

// Partitions splits [0,n) into min(threads, n) contiguous slices of
// n/threads elements each. The last slice absorbs the remainder of the
// integer division. The result is a pure function of (n, threads).
func Partitions(n, threads int) ([]Partition, error) {
	if n < 1 {
		return nil, failure.Newf(failure.KindInvalidArgument, "dimension must be positive, got %d", n)
	}
	if threads < 1 {
		return nil, failure.Newf(failure.KindInvalidArgument, "thread count must be positive, got %d", threads)
	}

	effective := EffectiveThreads(threads, n)
	slice := n / effective

	parts := make([]Partition, effective)
	for id := range effective {
		start := id * slice
		end := start + slice
		if id == effective-1 {
			end = n
		}
		parts[id] = Partition{ID: id, Start: start, End: end}
	}

	return parts, nil
}
