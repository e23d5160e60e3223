package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPullCmd(logger func() *zap.Logger) *cobra.Command {
	var (
		session string
		show    bool
		since   float64
	)

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull commands recorded by other sessions into the recall buffer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(logger())
			if err != nil {
				return err
			}

			a.hist.SeedPullCursor(since)
			cnt, err := a.hist.Pull(session, show, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d commands\n", cnt)
			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "pull from this source session only")
	cmd.Flags().BoolVar(&show, "show", false, "print each imported command")
	cmd.Flags().Float64Var(&since, "since", 0, "only import commands finished after this epoch time")

	return cmd
}
