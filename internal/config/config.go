package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Generate GenerateConfig `mapstructure:"generate"`
	Reduce   ReduceConfig   `mapstructure:"reduce"`
	Bench    BenchConfig    `mapstructure:"bench"`
}

type GenerateConfig struct {
	// Seed for the vector generator; 0 seeds from the clock.
	Seed uint64 `mapstructure:"seed"`
}

type ReduceConfig struct {
	Format string `mapstructure:"format"`
	// MaxRelError fails the reduce command when exceeded; 0 disables the gate.
	MaxRelError float64 `mapstructure:"max_rel_error"`
}

type BenchConfig struct {
	Runs    int   `mapstructure:"runs"`
	Threads []int `mapstructure:"threads"`
}

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Generate: GenerateConfig{
			Seed: 0,
		},
		Reduce: ReduceConfig{
			Format:      FormatTable,
			MaxRelError: 0,
		},
		Bench: BenchConfig{
			Runs:    3,
			Threads: []int{1, 2, 4, 8},
		},
	}
}

// flagKeys maps flag names to their config keys.
var flagKeys = map[string]string{
	"log-level":     "log_level",
	"seed":          "generate.seed",
	"format":        "reduce.format",
	"max-rel-error": "reduce.max_rel_error",
	"runs":          "bench.runs",
	"threads":       "bench.threads",
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	fs.Uint64("seed", defaults.Generate.Seed, "Vector generator seed (0 = time-based)")
	fs.String("format", defaults.Reduce.Format, "Output format: table|json")
	fs.Float64("max-rel-error", defaults.Reduce.MaxRelError, "Exit non-zero if the relative error exceeds this value (0 = disabled)")
	fs.Int("runs", defaults.Bench.Runs, "Runs per thread count for bench")
	fs.IntSlice("threads", defaults.Bench.Threads, "Thread counts swept by bench")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		fs := opts.Cmd.Flags()
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	v.SetEnvPrefix("DOTPROD")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("dotprod")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks value ranges that the flag types cannot express.
func (c Config) Validate() error {
	switch c.Reduce.Format {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q (expected %s|%s)", c.Reduce.Format, FormatTable, FormatJSON)
	}
	if c.Reduce.MaxRelError < 0 {
		return fmt.Errorf("max_rel_error must not be negative, got %g", c.Reduce.MaxRelError)
	}
	if c.Bench.Runs < 1 {
		return fmt.Errorf("bench runs must be at least 1, got %d", c.Bench.Runs)
	}
	if len(c.Bench.Threads) == 0 {
		return fmt.Errorf("bench threads must list at least one thread count")
	}
	for _, t := range c.Bench.Threads {
		if t < 1 {
			return fmt.Errorf("bench thread counts must be positive, got %d", t)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("generate.seed", c.Generate.Seed)
	v.SetDefault("reduce.format", c.Reduce.Format)
	v.SetDefault("reduce.max_rel_error", c.Reduce.MaxRelError)
	v.SetDefault("bench.runs", c.Bench.Runs)
	v.SetDefault("bench.threads", c.Bench.Threads)
}
