// Package bench provides timing aggregation and report formatting for the
// dotprod reduce and bench commands.
package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/example/dotprod/internal/reduce"
)

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timing and numeric outcome of a single reduction.
type RunResult struct {
	Index         int
	Threads       int
	Cold          bool // true for the first run at a given thread count
	Duration      time.Duration
	Parallel      float64
	RelativeError float64
}

// FromOutcome converts a reducer outcome into a RunResult.
func FromOutcome(index int, out reduce.Outcome) RunResult {
	return RunResult{
		Index:         index,
		Threads:       out.Threads,
		Cold:          index == 0,
		Duration:      out.Elapsed,
		Parallel:      out.Parallel,
		RelativeError: out.RelativeError,
	}
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// The slice must be non-empty.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// Series groups the runs made at one thread count.
type Series struct {
	Threads int
	Runs    []RunResult
	Stats   Stats
	// Speedup is the reference mean divided by this series' mean.
	Speedup float64
}

// NewSeries builds a Series and its Stats from runs.
func NewSeries(threads int, runs []RunResult) Series {
	durations := make([]time.Duration, len(runs))
	for i, r := range runs {
		durations[i] = r.Duration
	}
	return Series{Threads: threads, Runs: runs, Stats: ComputeStats(durations)}
}

// MaxRelativeError returns the largest relative error in the series.
func (s Series) MaxRelativeError() float64 {
	var worst float64
	for _, r := range s.Runs {
		if r.RelativeError > worst || math.IsNaN(r.RelativeError) {
			worst = r.RelativeError
		}
	}
	return worst
}

// ---------------------------------------------------------------------------
// Speedup
// ---------------------------------------------------------------------------

// CalcSpeedup returns reference / d.
// Returns 0 if d is zero to avoid division by zero.
func CalcSpeedup(reference, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(reference) / float64(d)
}

// ApplySpeedups sets each series' Speedup relative to the first series.
func ApplySpeedups(series []Series) {
	if len(series) == 0 {
		return
	}
	ref := series[0].Stats.Mean
	for i := range series {
		series[i].Speedup = CalcSpeedup(ref, series[i].Stats.Mean)
	}
}

// ---------------------------------------------------------------------------
// Relative error gate
// ---------------------------------------------------------------------------

// CheckRelativeErrorThreshold returns an error if relErr > threshold.
// A threshold of 0 disables the gate.
func CheckRelativeErrorThreshold(relErr, threshold float64) error {
	if threshold <= 0 {
		return nil
	}
	if math.IsNaN(relErr) || relErr > threshold {
		return fmt.Errorf("relative error %.3g exceeds threshold %.3g", relErr, threshold)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

// FormatTable writes a human-readable ASCII table of a thread sweep to w.
func FormatTable(series []Series, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-7s  %5s  %10s  %10s  %10s  %8s  %12s\n",
		"Threads", "Runs", "Min(ms)", "Mean(ms)", "Max(ms)", "Speedup", "MaxRelErr")
	fmt.Fprintln(sb, strings.Repeat("-", 75))

	for _, s := range series {
		fmt.Fprintf(sb, "%-7d  %5d  %10.3f  %10.3f  %10.3f  %8.2f  %12.3e\n",
			s.Threads,
			len(s.Runs),
			ms(s.Stats.Min),
			ms(s.Stats.Mean),
			ms(s.Stats.Max),
			s.Speedup,
			s.MaxRelativeError(),
		)
	}

	fmt.Fprint(w, sb.String())
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Series []jsonSeries `json:"series"`
}

type jsonSeries struct {
	Threads int       `json:"threads"`
	Runs    []jsonRun `json:"runs"`
	Stats   jsonStats `json:"stats"`
	Speedup float64   `json:"speedup"`
}

type jsonRun struct {
	Index         int      `json:"index"`
	Cold          bool     `json:"cold"`
	DurationMS    float64  `json:"duration_ms"`
	Parallel      float64  `json:"parallel"`
	RelativeError *float64 `json:"relative_error"`
}

type jsonStats struct {
	MinMS  float64 `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	MaxMS  float64 `json:"max_ms"`
}

// FormatJSON writes a JSON report of a thread sweep to w.
func FormatJSON(series []Series, w io.Writer) {
	jr := jsonReport{Series: make([]jsonSeries, len(series))}
	for i, s := range series {
		js := jsonSeries{
			Threads: s.Threads,
			Runs:    make([]jsonRun, len(s.Runs)),
			Stats: jsonStats{
				MinMS:  ms(s.Stats.Min),
				MeanMS: ms(s.Stats.Mean),
				MaxMS:  ms(s.Stats.Max),
			},
			Speedup: s.Speedup,
		}
		for j, r := range s.Runs {
			js.Runs[j] = jsonRun{
				Index:         r.Index,
				Cold:          r.Cold,
				DurationMS:    ms(r.Duration),
				Parallel:      r.Parallel,
				RelativeError: relErrJSON(r.RelativeError),
			}
		}
		jr.Series[i] = js
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// relErrJSON returns nil for an undefined relative error, which encodes as
// null since encoding/json rejects NaN.
func relErrJSON(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
