package application

import (
	"errors"
	"io/fs"

	"go.uber.org/zap"

	"github.com/bnema/shellhist/internal/domain"
)

// FlushHandle tracks one spawned flush. Wait blocks until the merge has
// completed; Err is valid afterwards.
type FlushHandle struct {
	done chan struct{}
	err  error
}

func (f *FlushHandle) Wait() {
	<-f.done
}

func (f *FlushHandle) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// dump merges one buffer snapshot into the session file. The caller holds
// the access queue. The file is rewritten whole so it is always valid
// JSON; incremental appends would leave a torn document on crash.
func (h *History) dump(batch []domain.CommandEntry, atExit bool) error {
	ctl := h.cfg.Control()

	kept := make([]domain.CommandEntry, 0, len(batch))
	lastInp := ""
	hasLast := false
	for _, cmd := range batch {
		if ctl.IgnoreDups && hasLast && cmd.Inp == lastInp {
			h.skipped.Add(1)
			continue
		}
		if ctl.IgnoreErr && cmd.Rtn != 0 {
			h.skipped.Add(1)
			continue
		}
		kept = append(kept, cmd)
		lastInp = cmd.Inp
		hasLast = true
	}

	file, err := h.store.Read(h.filename)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		// first flush of this session creates the file
		file = domain.SessionFile{
			SessionID: h.sessionID,
			Ts:        domain.TimePair{Start: h.start},
			Locked:    true,
			Meta:      h.meta,
		}
	}
	prior := len(file.Cmds)
	file.Cmds = append(file.Cmds, kept...)

	if atExit {
		end := epoch(h.clock.Now())
		file.Ts.End = &end
		file.Locked = false
	}

	if !h.cfg.StoreStdout {
		// strip captured output from the records added this flush only;
		// previously persisted ones are left alone
		for i := prior; i < len(file.Cmds); i++ {
			file.Cmds[i].Out = nil
		}
	}

	if err := h.store.Write(h.filename, file); err != nil {
		return err
	}
	h.log.Debug("flushed history buffer",
		zap.Int("appended", len(kept)),
		zap.Int("skipped", len(batch)-len(kept)),
		zap.Bool("at_exit", atExit))
	return nil
}
