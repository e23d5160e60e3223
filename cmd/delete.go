package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDeleteCmd(logger func() *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PATTERN",
		Short: "Delete history entries whose input matches a regex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(logger())
			if err != nil {
				return err
			}

			deleted, err := a.hist.Delete(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d entries\n", deleted)
			return nil
		},
	}
}
