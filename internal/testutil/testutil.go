// Package testutil provides shared fixtures for tests that need a baseline
// file on disk.
//
// Typical usage:
//
//	func TestMyCommand(t *testing.T) {
//	    path := testutil.WriteBaseline(t, testutil.ScenarioA())
//	    ...
//	}
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/example/dotprod/internal/baseline"
	"github.com/example/dotprod/internal/vecgen"
)

// ScenarioA returns the four-element record [1,2,3,4]·[4,3,2,1] = 20.
func ScenarioA() *baseline.Record {
	return &baseline.Record{
		N:          4,
		V1:         []float64{1, 2, 3, 4},
		V2:         []float64{4, 3, 2, 1},
		Sequential: 20,
	}
}

// ZeroBaseline returns a record whose sequential dot product is exactly zero.
func ZeroBaseline() *baseline.Record {
	return &baseline.Record{
		N:          4,
		V1:         []float64{1, -1, 2, -2},
		V2:         []float64{1, 1, 1, 1},
		Sequential: 0,
	}
}

// WriteBaseline writes rec into a fresh temp directory and returns its path.
func WriteBaseline(tb testing.TB, rec *baseline.Record) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "baseline.bin")
	if err := baseline.WriteFile(path, rec); err != nil {
		tb.Fatalf("write baseline fixture: %v", err)
	}

	return path
}

// RandomBaseline generates a seeded record of n elements and writes it to a
// temp file. It returns the path and the record.
func RandomBaseline(tb testing.TB, n int64, seed uint64) (string, *baseline.Record) {
	tb.Helper()

	rng, _ := vecgen.NewRand(seed)

	rec, err := vecgen.Generate(n, rng)
	if err != nil {
		tb.Fatalf("generate baseline fixture: %v", err)
	}

	return WriteBaseline(tb, rec), rec
}
