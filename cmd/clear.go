package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newClearCmd(logger func() *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear this session's history from memory and disk",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := wireApp(logger())
			if err != nil {
				return err
			}
			return a.hist.Clear()
		},
	}
}
