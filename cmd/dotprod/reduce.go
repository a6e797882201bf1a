package main

import (
	"errors"
	"log/slog"
	"math"

	"github.com/example/dotprod/internal/baseline"
	"github.com/example/dotprod/internal/bench"
	"github.com/example/dotprod/internal/config"
	"github.com/example/dotprod/internal/failure"
	"github.com/example/dotprod/internal/reduce"
	"github.com/spf13/cobra"
)

func newReduceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reduce <input_path> <thread_count>",
		Short: "Compute the dot product in parallel and compare it with the stored baseline",
		Args:  exactArgs(2, "1000_dim.bin 4"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			threads, err := parseThreads(args[1])
			if err != nil {
				return err
			}

			rec, err := baseline.ReadFile(args[0])
			if err != nil {
				return err
			}

			out, runErr := reduce.Run(rec, threads, reduce.WithLogger(slog.Default()))
			if runErr != nil && !errors.Is(runErr, failure.ErrZeroBaseline) {
				return runErr
			}

			w := cmd.OutOrStdout()
			switch cfg.Reduce.Format {
			case config.FormatJSON:
				bench.FormatOutcomeJSON(out, w)
			default:
				bench.FormatOutcome(out, w)
			}

			if runErr != nil {
				return runErr
			}
			return bench.CheckRelativeErrorThreshold(out.RelativeError, cfg.Reduce.MaxRelError)
		},
	}

	return cmd
}

func parseThreads(raw string) (int, error) {
	v, err := parsePositiveInt("thread count", raw)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt {
		return 0, failure.Newf(failure.KindInvalidArgument, "thread count %d too large", v)
	}
	return int(v), nil
}
