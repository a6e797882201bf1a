package main

import (
	"runtime"

	"github.com/example/dotprod/internal/doctor"
	"github.com/example/dotprod/internal/failure"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	var checkThreads int

	cmd := &cobra.Command{
		Use:   "doctor <input_path>",
		Short: "Check a baseline file for consistency",
		Args:  exactArgs(1, "1000_dim.bin"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			result := doctor.Run(doctor.Config{
				Path:        args[0],
				Threads:     checkThreads,
				MaxRelError: cfg.Reduce.MaxRelError,
			}, cmd.OutOrStdout())

			if result.Failed() {
				return failure.Newf(failure.KindInvalidArgument, "doctor: %d check(s) failed on %s", len(result.Failures()), args[0])
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&checkThreads, "check-threads", runtime.NumCPU(), "Workers for the parallel agreement check (0 = skip)")

	return cmd
}
