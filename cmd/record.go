package cmd

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bnema/shellhist/internal/domain"
)

// newRecordCmd is the per-command hook a shell calls after each executed
// line: it appends the entry to the session file and flushes synchronously.
func newRecordCmd(logger func() *zap.Logger) *cobra.Command {
	var (
		status   int
		cwd      string
		output   string
		start    float64
		duration float64
		space    bool
	)

	cmd := &cobra.Command{
		Use:   "record [flags] -- COMMAND...",
		Short: "Record one executed command into the session history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(logger())
			if err != nil {
				return err
			}

			now := float64(time.Now().UnixNano()) / 1e9
			if start == 0 {
				start = now - duration
			}
			end := start + duration

			entry := domain.CommandEntry{
				Inp: strings.Join(args, " "),
				Rtn: status,
				Ts:  domain.TimePair{Start: start, End: &end},
				Cwd: cwd,
				Spc: space,
			}
			if output != "" {
				entry.Out = &output
			}

			// a small buffer_size can auto-flush inside Append; that
			// merge must land before the at-exit finalize runs
			if handle := a.hist.Append(entry); handle != nil {
				handle.Wait()
				if err := handle.Err(); err != nil {
					return errors.Join(errors.New("record command"), err)
				}
			}
			handle := a.hist.Flush(true)
			handle.Wait()
			if err := handle.Err(); err != nil {
				return errors.Join(errors.New("record command"), err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&status, "status", 0, "exit status of the command")
	cmd.Flags().StringVar(&cwd, "cwd", "", "working directory the command ran in")
	cmd.Flags().StringVar(&output, "output", "", "captured output (stored only with store_stdout)")
	cmd.Flags().Float64Var(&start, "start", 0, "start time as epoch seconds (default: now minus duration)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "command duration in seconds")
	cmd.Flags().BoolVar(&space, "space", false, "the input line had a leading space")

	return cmd
}
