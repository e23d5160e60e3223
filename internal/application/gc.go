package application

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/shellhist/internal/config"
	"github.com/bnema/shellhist/internal/domain"
	"github.com/bnema/shellhist/internal/ports"
)

// CollectorOptions configures one retention pass.
type CollectorOptions struct {
	// WaitForShell defers the pass until MarkShellReady, so GC never
	// competes with interactive startup.
	WaitForShell bool
	// Size overrides the configured retention spec.
	Size *domain.RetentionSpec
	// Force deletes even when the pass would discard more history than
	// it keeps.
	Force bool
}

// Collector is one background retention pass over all history files. It
// never coordinates with the access queue: the lock flag on each file is
// the only (best-effort) exclusion signal.
type Collector struct {
	store  ports.FileStore
	cfg    *config.Config
	boot   ports.BootClock
	clock  ports.Clock
	log    *zap.Logger
	record func(GCResult)

	size  *domain.RetentionSpec
	force bool

	shellReady atomic.Bool
	done       chan struct{}
	err        atomic.Pointer[error]
}

func startCollector(store ports.FileStore, cfg *config.Config, boot ports.BootClock, clock ports.Clock, log *zap.Logger, record func(GCResult), opts CollectorOptions) *Collector {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if record == nil {
		record = func(GCResult) {}
	}
	c := &Collector{
		store:  store,
		cfg:    cfg,
		boot:   boot,
		clock:  clock,
		log:    log,
		record: record,
		size:   opts.Size,
		force:  opts.Force,
		done:   make(chan struct{}),
	}
	if !opts.WaitForShell {
		c.shellReady.Store(true)
	}
	go c.run()
	return c
}

// Alive reports whether the pass is still running.
func (c *Collector) Alive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func (c *Collector) MarkShellReady() {
	c.shellReady.Store(true)
}

// Err returns the failure of a finished pass, if any.
func (c *Collector) Err() error {
	if err := c.err.Load(); err != nil {
		return *err
	}
	return nil
}

func (c *Collector) fail(err error) {
	c.err.Store(&err)
}

func (c *Collector) run() {
	defer close(c.done)

	for !c.shellReady.Load() {
		time.Sleep(gcPollInterval)
	}

	spec := domain.RetentionSpec{}
	if c.size != nil {
		spec = *c.size
	} else {
		var err error
		spec, err = c.cfg.Retention()
		if err != nil {
			c.log.Error("history gc misconfigured", zap.Error(err))
			c.fail(err)
			return
		}
	}

	files := c.files(true)
	now := epoch(c.clock.Now())
	over, rm, err := domain.PlanRemoval(spec.Unit, spec.Limit, now, files)
	if err != nil {
		c.log.Error("history gc misconfigured", zap.Error(err))
		c.fail(err)
		return
	}

	c.record(GCResult{Size: over + float64(spec.Limit), Unit: spec.Unit})

	if !c.force && over >= float64(spec.Limit) {
		// deleting would discard more history than it keeps
		c.log.Warn("history gc would discard more than it keeps; not removing anything",
			zap.Float64("over", over),
			zap.Int64("limit", spec.Limit),
			zap.String("unit", string(spec.Unit)))
		fmt.Fprintf(os.Stderr,
			"Warning: history garbage collection would discard more history (%g %s) than it would keep (%d).\n"+
				"Not removing any history for now. Either increase the limit or run `shellhist gc --force`.\n",
			over, spec.Unit, spec.Limit)
		return
	}

	for i, f := range rm {
		if err := c.store.Remove(f.Path); err != nil {
			continue
		}
		c.log.Debug("deleted history file",
			zap.Int("n", i+1),
			zap.Int("total", len(rm)),
			zap.String("path", f.Path))
	}
}

// files enumerates all history files as fresh retention tuples, sorted
// oldest first. Zero-byte files are zero-command candidates. A file still
// claiming to be locked from before the last boot belongs to a dead
// process and is rewritten unlocked before being considered.
func (c *Collector) files(onlyUnlocked bool) []domain.FileInfo {
	var bootEpoch float64
	if c.boot != nil {
		if boot, err := c.boot.BootTime(); err == nil {
			bootEpoch = epoch(boot)
		} else {
			c.log.Debug("could not determine boot time", zap.Error(err))
		}
	}

	var out []domain.FileInfo
	for _, path := range c.store.List(ports.ListOptions{}) {
		stat, err := c.store.Stat(path)
		if err != nil {
			continue
		}
		if stat.Size == 0 {
			out = append(out, domain.FileInfo{Timestamp: stat.MTime, Path: path})
			continue
		}

		file, err := c.store.Open(path)
		if err != nil {
			c.log.Debug("skipping unreadable history file", zap.String("path", path), zap.Error(err))
			continue
		}
		if file.Locked() && file.TimeRange().Start < bootEpoch {
			full, err := file.Load()
			if err != nil {
				continue
			}
			full.Locked = false
			if err := c.store.Write(path, full); err != nil {
				continue
			}
			file, err = c.store.Open(path)
			if err != nil {
				continue
			}
		}
		if onlyUnlocked && file.Locked() {
			continue
		}
		out = append(out, domain.FileInfo{
			Timestamp: file.TimeRange().Effective(),
			NumCmds:   file.NumCommands(),
			Path:      path,
			Size:      stat.Size,
		})
	}
	domain.SortFileInfos(out)
	return out
}
