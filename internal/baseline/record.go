// Package baseline reads and writes the baseline record exchanged between the
// vector producer and the parallel reducer.
//
// The on-disk layout uses platform-native byte order and has no header,
// magic or version:
//
//	offset 0       N            int64
//	offset 8       vector1      N x float64
//	offset 8+8N    vector2      N x float64
//	offset 8+16N   sequential   float64
package baseline

import (
	"fmt"
	"math"

	"github.com/example/dotprod/internal/failure"
)

const (
	headerSize  = 8
	elementSize = 8
)

// Record is the persisted ground truth: two equal-length vectors and their
// sequentially computed dot product. It is not mutated after creation.
type Record struct {
	N          int64
	V1         []float64
	V2         []float64
	Sequential float64
}

// Validate checks that the record is internally consistent.
func (r *Record) Validate() error {
	if r.N < 1 {
		return failure.Newf(failure.KindInvalidArgument, "dimension must be positive, got %d", r.N)
	}
	if int64(len(r.V1)) != r.N || int64(len(r.V2)) != r.N {
		return failure.Newf(failure.KindInvalidArgument,
			"vector lengths %d/%d do not match dimension %d", len(r.V1), len(r.V2), r.N)
	}
	return nil
}

// RecordSize returns the encoded size in bytes of a record of dimension n.
// ok is false when the size does not fit in an int64.
func RecordSize(n int64) (size int64, ok bool) {
	if n < 0 || n > (math.MaxInt64-2*headerSize)/(2*elementSize) {
		return 0, false
	}
	return headerSize + 2*elementSize*n + elementSize, true
}

// AllocVectors allocates two zeroed vectors of length n. Sizes the runtime
// refuses to allocate are reported as failure.KindAllocation rather than a
// panic.
func AllocVectors(n int64) (v1, v2 []float64, err error) {
	if n < 1 {
		return nil, nil, failure.Newf(failure.KindInvalidArgument, "dimension must be positive, got %d", n)
	}
	if n > int64(math.MaxInt/(2*elementSize)) {
		return nil, nil, failure.Newf(failure.KindAllocation, "dimension %d exceeds addressable memory", n)
	}

	defer func() {
		if r := recover(); r != nil {
			v1, v2 = nil, nil
			err = failure.Wrap(failure.KindAllocation, fmt.Sprintf("allocate 2x%d float64", n), fmt.Errorf("%v", r))
		}
	}()

	v1 = make([]float64, n)
	v2 = make([]float64, n)

	return v1, v2, nil
}
