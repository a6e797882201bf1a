// Package vecgen produces the baseline record: two random vectors and their
// dot product computed sequentially in strict index order.
package vecgen

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/example/dotprod/internal/baseline"
	"github.com/example/dotprod/internal/failure"
)

// Options configures Produce.
type Options struct {
	N    int64
	Path string
	// Seed selects a reproducible generator. Zero seeds from the clock.
	Seed   uint64
	Logger *slog.Logger
}

// Summary describes a produced baseline file.
type Summary struct {
	N          int64
	Sequential float64
	// Elapsed covers the sequential dot product only, not generation or I/O.
	Elapsed time.Duration
	Path    string
	Bytes   int64
	Seed    uint64
}

// NewRand returns the generator used by Produce for seed. A zero seed is
// replaced by the current time.
func NewRand(seed uint64) (*rand.Rand, uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), seed
}

// Element draws one vector element: an integer part in [0,1000) plus a
// fraction in hundredths in [0,1.00).
func Element(rng *rand.Rand) float64 {
	return float64(rng.IntN(1000)) + float64(rng.IntN(100))/100.0
}

// Fill populates v1 and v2 with independent elements. For each index the
// v1 element is drawn before the v2 element.
func Fill(v1, v2 []float64, rng *rand.Rand) {
	for i := range v1 {
		v1[i] = Element(rng)
		v2[i] = Element(rng)
	}
}

// SequentialDot returns sum(a[i]*b[i]) accumulated in index order.
// len(a) must equal len(b); the caller is responsible for this.
func SequentialDot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Generate allocates and fills a vector pair of length n and returns the
// record with its sequential dot product.
func Generate(n int64, rng *rand.Rand) (*baseline.Record, error) {
	rec, err := newPair(n, rng)
	if err != nil {
		return nil, err
	}
	rec.Sequential = SequentialDot(rec.V1, rec.V2)
	return rec, nil
}

// newPair returns a filled record whose Sequential field is not yet set.
func newPair(n int64, rng *rand.Rand) (*baseline.Record, error) {
	if n < 1 {
		return nil, failure.Newf(failure.KindInvalidArgument, "dimension must be positive, got %d", n)
	}

	v1, v2, err := baseline.AllocVectors(n)
	if err != nil {
		return nil, err
	}
	Fill(v1, v2, rng)

	return &baseline.Record{N: n, V1: v1, V2: v2}, nil
}

// Produce generates a vector pair of opts.N elements, computes its dot
// product sequentially and writes the baseline record to opts.Path,
// replacing any existing file.
func Produce(opts Options) (Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Path == "" {
		return Summary{}, failure.New(failure.KindInvalidArgument, "output path is required")
	}

	rng, seed := NewRand(opts.Seed)
	rec, err := newPair(opts.N, rng)
	if err != nil {
		return Summary{}, err
	}
	logger.Debug("vectors generated", "n", opts.N, "seed", seed)

	start := time.Now()
	seq := SequentialDot(rec.V1, rec.V2)
	elapsed := time.Since(start)

	rec.Sequential = seq
	if err := baseline.WriteFile(opts.Path, rec); err != nil {
		return Summary{}, fmt.Errorf("write baseline: %w", err)
	}

	size, _ := baseline.RecordSize(opts.N)
	logger.Info("baseline written", "path", opts.Path, "n", opts.N, "bytes", size, "elapsed", elapsed)

	return Summary{
		N:          opts.N,
		Sequential: seq,
		Elapsed:    elapsed,
		Path:       opts.Path,
		Bytes:      size,
		Seed:       seed,
	}, nil
}
