package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var verbose bool
	var logger *zap.Logger

	rootCmd := &cobra.Command{
		Use:           "shellhist",
		Short:         "Per-session shell command history with retention and cross-session pull",
		Long:          "shellhist records executed shell commands into per-session JSON history files, bounds total history by age, count, file count or byte size, and can pull commands recorded by other live sessions into the current prompt's recall buffer.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	loggerFn := func() *zap.Logger {
		if logger == nil {
			return zap.NewNop()
		}
		return logger
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRecordCmd(loggerFn),
		newShowCmd(loggerFn),
		newInfoCmd(loggerFn),
		newGCCmd(loggerFn),
		newPullCmd(loggerFn),
		newClearCmd(loggerFn),
		newDeleteCmd(loggerFn),
		newConfigCmd(),
	)

	return rootCmd
}
