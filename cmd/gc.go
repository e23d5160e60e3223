package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bnema/shellhist/internal/domain"
)

func newGCCmd(logger func() *zap.Logger) *cobra.Command {
	var (
		size     string
		force    bool
		blocking bool
	)

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Run history garbage collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(logger())
			if err != nil {
				return err
			}

			var spec *domain.RetentionSpec
			if size != "" {
				parsed, err := domain.ParseRetentionSpec(size)
				if err != nil {
					return err
				}
				spec = &parsed
			}
			return a.hist.RunGC(spec, blocking, force)
		},
	}

	cmd.Flags().StringVar(&size, "size", "", "retention limit override, e.g. \"8128 commands\" or \"512 kb\"")
	cmd.Flags().BoolVar(&force, "force", false, "delete even when more history would be discarded than kept")
	cmd.Flags().BoolVar(&blocking, "blocking", true, "wait for the collection pass to finish")

	return cmd
}
