package testutil

import (
	"testing"

	"github.com/example/dotprod/internal/baseline"
)

func TestWriteBaseline_RoundTrips(t *testing.T) {
	path := WriteBaseline(t, ScenarioA())

	rec, err := baseline.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if rec.N != 4 || rec.Sequential != 20 {
		t.Errorf("got N=%d Sequential=%v; want 4, 20", rec.N, rec.Sequential)
	}
}

func TestRandomBaseline(t *testing.T) {
	path, rec := RandomBaseline(t, 100, 3)

	loaded, err := baseline.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if loaded.Sequential != rec.Sequential || loaded.N != 100 {
		t.Errorf("loaded N=%d Sequential=%v does not match generated record", loaded.N, loaded.Sequential)
	}
}

func TestZeroBaselineIsZero(t *testing.T) {
	rec := ZeroBaseline()

	var s float64
	for i := range rec.V1 {
		s += rec.V1[i] * rec.V2[i]
	}

	if s != 0 || rec.Sequential != 0 {
		t.Errorf("ZeroBaseline dot = %v, stored %v; want 0", s, rec.Sequential)
	}
}
