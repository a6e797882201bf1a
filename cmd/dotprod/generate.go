package main

import (
	"log/slog"

	"github.com/example/dotprod/internal/bench"
	"github.com/example/dotprod/internal/vecgen"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <dimension> <output_path>",
		Short: "Generate two random vectors and write them with their sequential dot product",
		Args:  exactArgs(2, "1000 1000_dim.bin"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			n, err := parsePositiveInt("dimension", args[0])
			if err != nil {
				return err
			}

			summary, err := vecgen.Produce(vecgen.Options{
				N:      n,
				Path:   args[1],
				Seed:   cfg.Generate.Seed,
				Logger: slog.Default(),
			})
			if err != nil {
				return err
			}

			bench.FormatSummary(summary, cmd.OutOrStdout())
			return nil
		},
	}

	return cmd
}
