package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/example/dotprod/internal/reduce"
	"github.com/example/dotprod/internal/vecgen"
)

const rule = "=-=-=-=-=-=-=-=-=-=-=-=-="

// FormatOutcome writes the human-readable result block of one reduction.
func FormatOutcome(out reduce.Outcome, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "Dimension: %s\n", humanize.Comma(out.N))
	fmt.Fprintf(sb, "Threads: %d\n", out.RequestedThreads)
	if out.Clamped() {
		fmt.Fprintf(sb, "Adjusted to %d threads\n", out.Threads)
	}

	fmt.Fprintf(sb, "\n%s RESULTS %s\n", rule, rule)
	fmt.Fprintf(sb, "Sequential dot product: %.6f\n", out.Sequential)
	fmt.Fprintf(sb, "Parallel dot product:   %.6f\n", out.Parallel)
	if math.IsNaN(out.RelativeError) {
		fmt.Fprintln(sb, "Relative error: undefined (zero baseline)")
	} else {
		fmt.Fprintf(sb, "Relative error: %.10f\n", out.RelativeError)
	}
	fmt.Fprintf(sb, "Elapsed: %.6f s (%.3f ms)\n", out.Elapsed.Seconds(), ms(out.Elapsed))
	fmt.Fprintf(sb, "%s PARALLEL %s\n", rule, rule)

	fmt.Fprint(w, sb.String())
}

type jsonOutcome struct {
	N                int64         `json:"n"`
	RequestedThreads int           `json:"requested_threads"`
	Threads          int           `json:"threads"`
	Partitions       []jsonPartRes `json:"partitions"`
	Sequential       float64       `json:"sequential"`
	Parallel         float64       `json:"parallel"`
	RelativeError    *float64      `json:"relative_error"`
	ElapsedMS        float64       `json:"elapsed_ms"`
}

type jsonPartRes struct {
	ID      int     `json:"id"`
	Start   int     `json:"start"`
	End     int     `json:"end"`
	Partial float64 `json:"partial"`
}

// FormatOutcomeJSON writes one reduction as JSON. An undefined relative
// error is encoded as null.
func FormatOutcomeJSON(out reduce.Outcome, w io.Writer) {
	jo := jsonOutcome{
		N:                out.N,
		RequestedThreads: out.RequestedThreads,
		Threads:          out.Threads,
		Partitions:       make([]jsonPartRes, len(out.Partitions)),
		Sequential:       out.Sequential,
		Parallel:         out.Parallel,
		RelativeError:    relErrJSON(out.RelativeError),
		ElapsedMS:        ms(out.Elapsed),
	}
	for i, p := range out.Partitions {
		jo.Partitions[i] = jsonPartRes{ID: p.ID, Start: p.Start, End: p.End, Partial: out.Partials[i]}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jo)
}

// FormatSummary writes the result block of a produced baseline file.
func FormatSummary(s vecgen.Summary, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "\n%s RESULTS %s\n", rule, rule)
	fmt.Fprintln(sb, "Vectors generated.")
	fmt.Fprintf(sb, "Dimension: %s\n", humanize.Comma(s.N))
	fmt.Fprintf(sb, "Sequential dot product: %.6f\n", s.Sequential)
	fmt.Fprintf(sb, "Elapsed: %.6f s (%.3f ms)\n", s.Elapsed.Seconds(), ms(s.Elapsed))
	fmt.Fprintf(sb, "File: %s (%s)\n", s.Path, humanize.IBytes(uint64(s.Bytes)))
	fmt.Fprintf(sb, "Seed: %d\n", s.Seed)
	fmt.Fprintf(sb, "%s SEQUENTIAL %s\n", rule, rule)

	fmt.Fprint(w, sb.String())
}
