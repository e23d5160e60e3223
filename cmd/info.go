package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newInfoCmd(logger func() *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show history backend state for this session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(logger())
			if err != nil {
				return err
			}

			info := a.hist.Info()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "backend: %s\n", info.Backend)
			_, _ = fmt.Fprintf(out, "sessionid: %s\n", info.SessionID)
			_, _ = fmt.Fprintf(out, "filename: %s\n", info.Filename)
			_, _ = fmt.Fprintf(out, "length: %d\n", info.Length)
			_, _ = fmt.Fprintf(out, "buffersize: %d\n", info.BufferSize)
			_, _ = fmt.Fprintf(out, "bufferlength: %d\n", info.BufferLength)
			_, _ = fmt.Fprintf(out, "gc options: %s\n", info.Retention)
			if info.LastGC != "" {
				_, _ = fmt.Fprintf(out, "gc last size: %s\n", info.LastGC)
			}
			return nil
		},
	}
}
