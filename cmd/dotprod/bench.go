package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/example/dotprod/internal/baseline"
	"github.com/example/dotprod/internal/bench"
	"github.com/example/dotprod/internal/config"
	"github.com/example/dotprod/internal/failure"
	"github.com/example/dotprod/internal/reduce"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var cpuprofile string

	cmd := &cobra.Command{
		Use:   "bench <input_path>",
		Short: "Sweep thread counts and report reduction latency and speedup",
		Args:  exactArgs(1, "1000_dim.bin --threads 1,2,4,8 --runs 5"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			rec, err := baseline.ReadFile(args[0])
			if err != nil {
				return err
			}

			if cpuprofile != "" {
				stop, err := startCPUProfile(cpuprofile)
				if err != nil {
					return err
				}
				defer stop()
			}

			series, err := bench.Sweep(rec, cfg.Bench.Threads, cfg.Bench.Runs, reduce.WithLogger(slog.Default()))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch cfg.Reduce.Format {
			case config.FormatJSON:
				bench.FormatJSON(series, w)
			default:
				bench.FormatTable(series, w)
			}

			if rec.Sequential == 0 {
				return failure.New(failure.KindZeroBaseline, "sequential result is zero; relative error undefined")
			}

			var worst float64
			for _, s := range series {
				worst = max(worst, s.MaxRelativeError())
			}
			return bench.CheckRelativeErrorThreshold(worst, cfg.Reduce.MaxRelError)
		},
	}

	cmd.Flags().StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile of the sweep to this file")

	return cmd
}

func startCPUProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, failure.Wrap(failure.KindIO, "create cpu profile", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("start cpu profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			slog.Warn("close cpu profile", "path", path, "error", err)
		}
	}, nil
}
