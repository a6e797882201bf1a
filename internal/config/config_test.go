package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "info")
	}

	if cfg.Generate.Seed != 0 {
		t.Errorf("Generate.Seed = %d; want 0", cfg.Generate.Seed)
	}

	if cfg.Reduce.Format != FormatTable {
		t.Errorf("Reduce.Format = %q; want %q", cfg.Reduce.Format, FormatTable)
	}

	if cfg.Reduce.MaxRelError != 0 {
		t.Errorf("Reduce.MaxRelError = %v; want 0", cfg.Reduce.MaxRelError)
	}

	if cfg.Bench.Runs != 3 {
		t.Errorf("Bench.Runs = %d; want 3", cfg.Bench.Runs)
	}

	if !reflect.DeepEqual(cfg.Bench.Threads, []int{1, 2, 4, 8}) {
		t.Errorf("Bench.Threads = %v; want [1 2 4 8]", cfg.Bench.Threads)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

// --- RegisterFlags ---

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	checks := []struct {
		flag string
		want string
	}{
		{"log-level", "info"},
		{"seed", "0"},
		{"format", "table"},
		{"max-rel-error", "0"},
		{"runs", "3"},
		{"threads", "[1,2,4,8]"},
	}

	for _, c := range checks {
		f := fs.Lookup(c.flag)
		if f == nil {
			t.Errorf("flag %q not registered", c.flag)
			continue
		}

		if f.DefValue != c.want {
			t.Errorf("flag %q default = %q; want %q", c.flag, f.DefValue, c.want)
		}
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(cfg, defaults) {
		t.Errorf("Load() = %+v; want %+v", cfg, defaults)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err := fs.Parse([]string{
		"--log-level=debug",
		"--seed=42",
		"--format=json",
		"--max-rel-error=1e-9",
		"--runs=5",
		"--threads=2,16",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      &fakeBinder{fs: fs},
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "debug")
	}

	if cfg.Generate.Seed != 42 {
		t.Errorf("Generate.Seed = %d; want 42", cfg.Generate.Seed)
	}

	if cfg.Reduce.Format != "json" {
		t.Errorf("Reduce.Format = %q; want json", cfg.Reduce.Format)
	}

	if cfg.Reduce.MaxRelError != 1e-9 {
		t.Errorf("Reduce.MaxRelError = %v; want 1e-9", cfg.Reduce.MaxRelError)
	}

	if cfg.Bench.Runs != 5 {
		t.Errorf("Bench.Runs = %d; want 5", cfg.Bench.Runs)
	}

	if !reflect.DeepEqual(cfg.Bench.Threads, []int{2, 16}) {
		t.Errorf("Bench.Threads = %v; want [2 16]", cfg.Bench.Threads)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DOTPROD_LOG_LEVEL", "warn")
	t.Setenv("DOTPROD_GENERATE_SEED", "7")
	t.Setenv("DOTPROD_REDUCE_FORMAT", "json")

	cfg, err := Load(LoadOptions{
		Defaults: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "warn")
	}

	if cfg.Generate.Seed != 7 {
		t.Errorf("Generate.Seed = %d; want 7", cfg.Generate.Seed)
	}

	if cfg.Reduce.Format != "json" {
		t.Errorf("Reduce.Format = %q; want json", cfg.Reduce.Format)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "dotprod.yaml")

	content := `
log_level: error
generate:
  seed: 1234
reduce:
  format: json
  max_rel_error: 0.001
bench:
  runs: 10
  threads: [1, 3]
`

	err := os.WriteFile(cfgFile, []byte(content), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		Cmd:        newFlagBinder(defaults),
		ConfigFile: cfgFile,
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Config{
		LogLevel: "error",
		Generate: GenerateConfig{Seed: 1234},
		Reduce:   ReduceConfig{Format: "json", MaxRelError: 0.001},
		Bench:    BenchConfig{Runs: 10, Threads: []int{1, 3}},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Load() = %+v; want %+v", cfg, want)
	}
}

func TestLoad_FlagBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "dotprod.yaml")

	if err := os.WriteFile(cfgFile, []byte("reduce:\n  format: json\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	if err := binder.fs.Parse([]string{"--format=table"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(LoadOptions{Cmd: binder, ConfigFile: cfgFile, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Reduce.Format != "table" {
		t.Errorf("Reduce.Format = %q; want table", cfg.Reduce.Format)
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "bad.yaml")
	// Write invalid YAML
	err := os.WriteFile(cfgFile, []byte(":\t:bad yaml:::"), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for invalid config file")
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: "/nonexistent/path/dotprod.yaml",
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for missing explicit config file")
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"--format=xml"}},
		{"negative threshold", []string{"--max-rel-error=-1"}},
		{"zero runs", []string{"--runs=0"}},
		{"zero thread count", []string{"--threads=4,0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defaults := DefaultConfig()
			binder := newFlagBinder(defaults)

			if err := binder.fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse: %v", err)
			}

			if _, err := Load(LoadOptions{Cmd: binder, Defaults: defaults}); err == nil {
				t.Errorf("Load(%v) = nil; want error", tt.args)
			}
		})
	}
}
