// Package doctor provides preflight checks for a baseline file.
package doctor

import (
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/example/dotprod/internal/baseline"
	"github.com/example/dotprod/internal/reduce"
	"github.com/example/dotprod/internal/vecgen"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// generatorMax is the exclusive upper bound of generated elements.
const generatorMax = 1000

// LoadFunc loads a baseline record from path.
type LoadFunc func(path string) (*baseline.Record, error)

// Config holds the inputs and injectable dependencies for each check.
type Config struct {
	// Path is the baseline file to inspect.
	Path string
	// Load reads the file. Defaults to baseline.ReadFile.
	Load LoadFunc
	// Threads, when positive, additionally runs the parallel reduction with
	// this many workers and checks it against the stored baseline.
	Threads int
	// MaxRelError bounds the parallel check. Zero uses 1e-9.
	MaxRelError float64
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark. When the file
// cannot be loaded the remaining checks are skipped.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	load := cfg.Load
	if load == nil {
		load = baseline.ReadFile
	}

	// ---- load -------------------------------------------------------------
	rec, err := load(cfg.Path)
	if err != nil {
		res.fail(fmt.Sprintf("baseline file: %v", err))
		fmt.Fprintf(w, "%s baseline file %s: %v\n", FailMark, cfg.Path, err)
		return res
	}
	size, _ := baseline.RecordSize(rec.N)
	fmt.Fprintf(w, "%s baseline file: %s (%s elements, %s)\n",
		PassMark, cfg.Path, humanize.Comma(rec.N), humanize.IBytes(uint64(size)))

	// ---- element values ---------------------------------------------------
	if i, v, ok := firstNonFinite(rec); ok {
		res.fail(fmt.Sprintf("element values: non-finite value %v at %s", v, i))
		fmt.Fprintf(w, "%s element values: non-finite value %v at %s\n", FailMark, v, i)
	} else if i, v, ok := firstOutOfRange(rec); ok {
		res.fail(fmt.Sprintf("element values: %v at %s outside [0,%d)", v, i, generatorMax))
		fmt.Fprintf(w, "%s element values: %v at %s outside [0,%d)\n", FailMark, v, i, generatorMax)
	} else {
		fmt.Fprintf(w, "%s element values: finite, within [0,%d)\n", PassMark, generatorMax)
	}

	// ---- baseline ---------------------------------------------------------
	if rec.Sequential == 0 {
		res.fail("sequential result: zero baseline, relative error undefined")
		fmt.Fprintf(w, "%s sequential result: zero\n", FailMark)
	} else {
		fmt.Fprintf(w, "%s sequential result: %.6f\n", PassMark, rec.Sequential)
	}

	recomputed := vecgen.SequentialDot(rec.V1, rec.V2)
	if math.Float64bits(recomputed) != math.Float64bits(rec.Sequential) {
		res.fail(fmt.Sprintf("sequential result: stored %.6f, recomputed %.6f", rec.Sequential, recomputed))
		fmt.Fprintf(w, "%s sequential result matches recomputation: stored %.6f, recomputed %.6f\n",
			FailMark, rec.Sequential, recomputed)
	} else {
		fmt.Fprintf(w, "%s sequential result matches recomputation\n", PassMark)
	}

	// ---- parallel reduction -----------------------------------------------
	if cfg.Threads > 0 && rec.Sequential != 0 {
		checkParallel(&res, rec, cfg, w)
	}

	return res
}

func checkParallel(res *Result, rec *baseline.Record, cfg Config, w io.Writer) {
	limit := cfg.MaxRelError
	if limit <= 0 {
		limit = 1e-9
	}

	out, err := reduce.Run(rec, cfg.Threads)
	switch {
	case err != nil:
		res.fail(fmt.Sprintf("parallel reduction: %v", err))
		fmt.Fprintf(w, "%s parallel reduction (%d threads): %v\n", FailMark, cfg.Threads, err)
	case out.RelativeError > limit:
		res.fail(fmt.Sprintf("parallel reduction: relative error %.3g exceeds %.3g", out.RelativeError, limit))
		fmt.Fprintf(w, "%s parallel reduction (%d threads): relative error %.3g exceeds %.3g\n",
			FailMark, out.Threads, out.RelativeError, limit)
	default:
		fmt.Fprintf(w, "%s parallel reduction (%d threads): relative error %.3g\n",
			PassMark, out.Threads, out.RelativeError)
	}
}

// firstNonFinite returns the position of the first NaN or infinity.
func firstNonFinite(rec *baseline.Record) (string, float64, bool) {
	for i, v := range rec.V1 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Sprintf("vector1[%d]", i), v, true
		}
	}
	for i, v := range rec.V2 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Sprintf("vector2[%d]", i), v, true
		}
	}
	if math.IsNaN(rec.Sequential) || math.IsInf(rec.Sequential, 0) {
		return "sequential result", rec.Sequential, true
	}
	return "", 0, false
}

func firstOutOfRange(rec *baseline.Record) (string, float64, bool) {
	for i, v := range rec.V1 {
		if v < 0 || v >= generatorMax {
			return fmt.Sprintf("vector1[%d]", i), v, true
		}
	}
	for i, v := range rec.V2 {
		if v < 0 || v >= generatorMax {
			return fmt.Sprintf("vector2[%d]", i), v, true
		}
	}
	return "", 0, false
}
