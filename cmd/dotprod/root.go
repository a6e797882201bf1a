package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/example/dotprod/internal/config"
	"github.com/example/dotprod/internal/failure"
	"github.com/example/dotprod/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "dotprod",
		Short:         "Parallel dot product against a sequential baseline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return failure.Wrap(failure.KindInvalidArgument, "configuration", err)
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return failure.Wrap(failure.KindInvalidArgument, "flags", err)
	})

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newReduceCmd())
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	logging.Setup(os.Stderr, levelStr)
}

func requireConfig() (config.Config, error) {
	if activeCfg.Reduce.Format == "" {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

// exactArgs is cobra.ExactArgs reporting failure.KindInvalidArgument with a
// usage example.
func exactArgs(n int, example string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return failure.Newf(failure.KindInvalidArgument,
				"%s expects %d arguments, got %d (example: %s %s)", cmd.Name(), n, len(args), cmd.CommandPath(), example)
		}
		return nil
	}
}

func parsePositiveInt(name, raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, failure.Newf(failure.KindInvalidArgument, "%s must be an integer, got %q", name, raw)
	}
	if v <= 0 {
		return 0, failure.Newf(failure.KindInvalidArgument, "%s must be positive, got %d", name, v)
	}
	return v, nil
}
