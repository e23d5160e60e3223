package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newShowCmd(logger func() *zap.Logger) *cobra.Command {
	var (
		all        bool
		reverse    bool
		timestamps bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show session history, or all sessions' history with --all",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(logger())
			if err != nil {
				return err
			}

			items := a.hist.Items(reverse)
			if all {
				items = a.hist.AllItems(reverse)
			}
			for item := range items {
				if timestamps {
					ts := time.Unix(0, int64(item.Ts*1e9)).Format(time.RFC3339)
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", ts, item.Inp)
					continue
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), item.Inp)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include every session's history")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "newest first")
	cmd.Flags().BoolVar(&timestamps, "timestamps", false, "prefix each line with its start time")

	return cmd
}
