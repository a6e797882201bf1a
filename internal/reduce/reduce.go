// Package reduce computes a dot product with a fixed-partition concurrent
// reduction and compares it with a sequential baseline.
//
// The vectors are split into contiguous partitions (see Partitions), one
// goroutine computes the partial sum of each, and the coordinator joins every
// worker before adding the partial sums in ascending worker-id order. Because
// float64 addition is not associative, that order is part of the contract:
// the same inputs and thread count always produce the same bits.
package reduce

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/example/dotprod/internal/baseline"
	"github.com/example/dotprod/internal/failure"
	"github.com/sourcegraph/conc/panics"
)

// Spawner starts worker tasks. Spawn must either arrange for fn to run
// exactly once and return nil, or return an error without ever running fn.
type Spawner interface {
	Spawn(id int, fn func()) error
}

// SpawnerFunc adapts a function to the Spawner interface.
type SpawnerFunc func(id int, fn func()) error

func (f SpawnerFunc) Spawn(id int, fn func()) error { return f(id, fn) }

// GoSpawner runs each task on its own goroutine.
var GoSpawner Spawner = SpawnerFunc(func(_ int, fn func()) error {
	go fn()
	return nil
})

// Option configures Dot and Run.
type Option func(*options)

type options struct {
	spawner Spawner
	logger  *slog.Logger
	kernel  func(a, b []float64) float64
}

// WithSpawner replaces GoSpawner.
func WithSpawner(s Spawner) Option {
	return func(o *options) { o.spawner = s }
}

// WithLogger sets the logger used for partition and worker diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func withKernel(k func(a, b []float64) float64) Option {
	return func(o *options) { o.kernel = k }
}

func newOptions(opts []Option) options {
	o := options{
		spawner: GoSpawner,
		logger:  slog.Default(),
		kernel:  partialDot,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Worker is the immutable configuration handed to one worker: its id, its
// partition and read-only views of the two vectors restricted to that
// partition.
type Worker struct {
	ID        int
	Partition Partition
	a, b      []float64
}

func newWorkers(parts []Partition, a, b []float64) []Worker {
	workers := make([]Worker, len(parts))
	for i, p := range parts {
		workers[i] = Worker{
			ID:        p.ID,
			Partition: p,
			a:         a[p.Start:p.End:p.End],
			b:         b[p.Start:p.End:p.End],
		}
	}
	return workers
}

func partialDot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Result is the output of Dot.
type Result struct {
	Partitions []Partition
	Partials   []float64
	Sum        float64
}

// Threads returns the number of workers that ran.
func (r Result) Threads() int { return len(r.Partitions) }

// Dot computes sum(a[i]*b[i]) with min(threads, len(a)) concurrent workers.
//
// Every worker that was started is joined before Dot returns, including on
// the error paths. A spawn error is reported as failure.KindWorkerSpawn; a
// worker that panics is reported as failure.KindWorkerJoin.
func Dot(a, b []float64, threads int, opts ...Option) (Result, error) {
	o := newOptions(opts)

	if len(a) != len(b) {
		return Result{}, failure.Newf(failure.KindInvalidArgument, "vector lengths differ: %d vs %d", len(a), len(b))
	}

	parts, err := Partitions(len(a), threads)
	if err != nil {
		return Result{}, err
	}
	workers := newWorkers(parts, a, b)

	partials := make([]float64, len(workers))
	recovered := make([]*panics.Recovered, len(workers))

	var (
		wg       sync.WaitGroup
		spawnErr error
		started  int
	)
	for _, w := range workers {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			var c panics.Catcher
			c.Try(func() { partials[w.ID] = o.kernel(w.a, w.b) })
			recovered[w.ID] = c.Recovered()
		}
		if err := o.spawner.Spawn(w.ID, task); err != nil {
			wg.Done()
			spawnErr = failure.Wrap(failure.KindWorkerSpawn, fmt.Sprintf("worker %d", w.ID), err)
			break
		}
		started++
		o.logger.Debug("worker started", "id", w.ID, "start", w.Partition.Start, "end", w.Partition.End)
	}

	wg.Wait()
	o.logger.Debug("workers joined", "started", started, "planned", len(workers))

	if spawnErr != nil {
		return Result{}, spawnErr
	}
	if err := joinError(recovered); err != nil {
		return Result{}, err
	}

	var sum float64
	for _, p := range partials {
		sum += p
	}

	return Result{Partitions: parts, Partials: partials, Sum: sum}, nil
}

// joinError reports the lowest-id worker that did not complete normally.
func joinError(recovered []*panics.Recovered) error {
	failed := 0
	first := -1
	for id, r := range recovered {
		if r == nil {
			continue
		}
		failed++
		if first < 0 {
			first = id
		}
	}
	if failed == 0 {
		return nil
	}
	return failure.Wrap(failure.KindWorkerJoin,
		fmt.Sprintf("worker %d (%d of %d failed)", first, failed, len(recovered)),
		recovered[first].AsError())
}

// RelativeError returns |sequential-parallel| / |sequential|. The
// denominator is the magnitude of the baseline rather than its signed value,
// so a negative baseline still yields a non-negative error; for the
// non-negative baselines written by vecgen the two are identical. A zero
// baseline makes the ratio undefined and is reported as
// failure.KindZeroBaseline.
func RelativeError(sequential, parallel float64) (float64, error) {
	if sequential == 0 {
		return math.NaN(), failure.New(failure.KindZeroBaseline, "sequential result is zero; relative error undefined")
	}
	return math.Abs(sequential-parallel) / math.Abs(sequential), nil
}

// Outcome is the result of Run.
type Outcome struct {
	N                int64
	RequestedThreads int
	Threads          int
	Partitions       []Partition
	Partials         []float64
	Parallel         float64
	Sequential       float64
	RelativeError    float64
	// Elapsed covers spawning, computing, joining and combining.
	Elapsed time.Duration
}

// Clamped reports whether fewer workers ran than were requested.
func (o Outcome) Clamped() bool { return o.Threads < o.RequestedThreads }

// Run computes the parallel dot product of rec's vectors and compares it
// with rec.Sequential.
//
// A zero baseline returns the otherwise complete Outcome, with a NaN
// RelativeError, together with a failure.KindZeroBaseline error.
func Run(rec *baseline.Record, threads int, opts ...Option) (Outcome, error) {
	if threads < 1 {
		return Outcome{}, failure.Newf(failure.KindInvalidArgument, "thread count must be positive, got %d", threads)
	}
	if err := rec.Validate(); err != nil {
		return Outcome{}, err
	}

	logger := newOptions(opts).logger

	start := time.Now()
	res, err := Dot(rec.V1, rec.V2, threads, opts...)
	elapsed := time.Since(start)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		N:                rec.N,
		RequestedThreads: threads,
		Threads:          res.Threads(),
		Partitions:       res.Partitions,
		Partials:         res.Partials,
		Parallel:         res.Sum,
		Sequential:       rec.Sequential,
		Elapsed:          elapsed,
	}
	if out.Clamped() {
		logger.Info("thread count clamped to dimension", "requested", threads, "effective", out.Threads)
	}

	out.RelativeError, err = RelativeError(rec.Sequential, res.Sum)
	if err != nil {
		return out, err
	}

	logger.Debug("reduction complete", "n", rec.N, "threads", out.Threads,
		"parallel", out.Parallel, "relative_error", out.RelativeError, "elapsed", elapsed)

	return out, nil
}
