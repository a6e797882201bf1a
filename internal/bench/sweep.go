package bench

import (
	"errors"
	"fmt"

	"github.com/example/dotprod/internal/baseline"
	"github.com/example/dotprod/internal/failure"
	"github.com/example/dotprod/internal/reduce"
)

// Sweep runs the reduction runs times for each thread count, in the order
// given, and returns one Series per thread count with speedups relative to
// the first. Runs are sequential so that their timings do not interfere.
//
// A zero baseline does not stop the sweep; its runs carry a NaN relative
// error.
func Sweep(rec *baseline.Record, threads []int, runs int, opts ...reduce.Option) ([]Series, error) {
	if len(threads) == 0 {
		return nil, failure.New(failure.KindInvalidArgument, "at least one thread count is required")
	}
	if runs < 1 {
		return nil, failure.Newf(failure.KindInvalidArgument, "runs must be at least 1, got %d", runs)
	}

	series := make([]Series, 0, len(threads))
	for _, t := range threads {
		results := make([]RunResult, 0, runs)
		for i := range runs {
			out, err := reduce.Run(rec, t, opts...)
			if err != nil && !errors.Is(err, failure.ErrZeroBaseline) {
				return nil, fmt.Errorf("threads=%d run %d: %w", t, i+1, err)
			}
			results = append(results, FromOutcome(i, out))
		}
		series = append(series, NewSeries(results[0].Threads, results))
	}

	ApplySpeedups(series)

	return series, nil
}
