package application

import (
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/bnema/shellhist/internal/domain"
	"github.com/bnema/shellhist/internal/ports"
)

// Pull imports commands other sessions have appended since the last pull
// into this session's recall buffer, oldest first, and returns the count
// imported. srcSessionID narrows the pull to one source session; empty
// means every session. When show is set each line is also printed to out.
func (h *History) Pull(srcSessionID string, show bool, out io.Writer) (int, error) {
	if h.recaller == nil {
		return 0, domain.ErrNoRecallBuffer
	}

	items := h.pullItems(srcSessionID)

	cnt := 0
	prev := ""
	hasPrev := false
	for _, item := range items {
		line := rstrip(item.Inp)
		if show && out != nil {
			_, _ = io.WriteString(out, line+"\n")
		}
		// adjacent duplicates collapse; non-adjacent repeats all import
		if !hasPrev || line != prev {
			if err := h.recaller.AppendString(line); err != nil {
				h.log.Debug("could not append to recall buffer", zap.Error(err))
			} else {
				cnt++
			}
		}
		prev = line
		hasPrev = true
	}

	// a full pull supersedes every per-source cursor
	if srcSessionID == "" {
		h.pullCursor = map[string]float64{}
	}
	h.pullCursor[srcSessionID] = epoch(h.clock.Now())

	return cnt, nil
}

// SeedPullCursor replaces every pull cursor with the given full-pull
// time. A short-lived CLI invocation has no in-process cursor history to
// rely on, so it seeds the window explicitly.
func (h *History) SeedPullCursor(cursor float64) {
	h.pullCursor = map[string]float64{"": cursor}
}

// pullItems collects commands newer than the relevant cursor from each
// candidate file, merged ascending by end timestamp. Each file is scanned
// backward from its tail: end timestamps are non-decreasing within one
// file, so the first stale command ends the scan.
func (h *History) pullItems(srcSessionID string) []domain.CommandEntry {
	lastFullPull := h.pullCursor[""]

	var paths []string
	if srcSessionID != "" {
		paths = []string{h.store.Path(srcSessionID)}
	} else {
		since := lastFullPull
		paths = h.store.List(ports.ListOptions{Sort: true, ModifiedSince: &since})
	}

	var items []domain.CommandEntry
	for _, path := range paths {
		if path == h.filename {
			continue
		}
		file, err := h.store.Open(path)
		if err != nil {
			continue
		}
		n := file.NumCommands()
		if n == 0 {
			continue
		}

		cutoff, ok := h.pullCursor[h.store.SessionID(path)]
		if !ok {
			cutoff = lastFullPull
		}
		for i := n - 1; i >= 0; i-- {
			cmd, err := file.Command(i)
			if err != nil {
				break
			}
			if cmd.Ts.End == nil || *cmd.Ts.End <= cutoff {
				break
			}
			items = append(items, cmd)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Ts.Effective() < items[j].Ts.Effective()
	})
	return items
}
