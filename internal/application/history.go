// Package application implements the session history engine: the buffered
// store and its flusher, the per-file access queue, lazy field accessors,
// the retention collector and the cross-session pull engine.
package application

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bnema/shellhist/internal/config"
	"github.com/bnema/shellhist/internal/domain"
	"github.com/bnema/shellhist/internal/ports"
)

// gcPollInterval is the collector's own sleep quantum; waiters poll a beat
// longer so they observe completed runs promptly without spinning.
const (
	gcPollInterval  = 10 * time.Millisecond
	gcWaitInterval  = 11 * time.Millisecond
	gcBlockInterval = 100 * time.Millisecond
)

// Options configures one session's history.
type Options struct {
	SessionID  string
	Filename   string
	BufferSize int
	// GC starts the background retention collector, deferred until
	// MarkShellReady is called.
	GC       bool
	Meta     map[string]any
	Recaller ports.Recaller
	Boot     ports.BootClock
	Clock    ports.Clock
	Logger   *zap.Logger
}

// History is one live session's command history: an in-memory buffer of
// not-yet-flushed entries in front of an append-only JSON session file.
// Buffer mutation must stay on the owning session's control flow; flushes
// and on-disk reads are serialized through the access queue.
type History struct {
	cfg   *config.Config
	store ports.FileStore

	sessionID string
	filename  string
	start     float64
	meta      map[string]any

	buffer     []domain.CommandEntry
	bufferSize int
	queue      *accessQueue
	length     atomic.Int64
	skipped    atomic.Int64

	remember bool
	saveCwd  bool
	ignore   *regexp.Regexp

	recaller ports.Recaller
	boot     ports.BootClock
	clock    ports.Clock
	log      *zap.Logger

	gc         *Collector
	lastGC     atomic.Pointer[GCResult]
	pullCursor map[string]float64

	Inps *CommandField
	Tss  *CommandField
	Outs *CommandField
	Rtns *CommandField
	Cwds *CommandField
}

// GCResult is the observable summary of the most recent retention pass.
type GCResult struct {
	Size float64
	Unit domain.RetentionUnit
}

// New returns a live history for the session. The session file is not
// created here; the first flush writes it locked with the session start
// stamped.
func New(cfg *config.Config, store ports.FileStore, opts Options) (*History, error) {
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = cfg.BufferSize
	}

	filename := opts.Filename
	if filename == "" {
		filename = cfg.HistoryFile
	}
	if filename == "" {
		filename = store.Path(opts.SessionID)
	}

	h := &History{
		cfg:        cfg,
		store:      store,
		sessionID:  opts.SessionID,
		filename:   filename,
		start:      epoch(opts.Clock.Now()),
		meta:       opts.Meta,
		bufferSize: opts.BufferSize,
		queue:      newAccessQueue(),
		remember:   cfg.Enabled,
		saveCwd:    cfg.SaveCwd,
		recaller:   opts.Recaller,
		boot:       opts.Boot,
		clock:      opts.Clock,
		log:        opts.Logger,
		pullCursor: map[string]float64{"": epoch(opts.Clock.Now())},
	}
	h.resetFields()

	if cfg.IgnoreRegex != "" {
		re, err := compileMatch(cfg.IgnoreRegex)
		if err != nil {
			return nil, fmt.Errorf("compile ignore regex: %w", err)
		}
		h.ignore = re
	}

	if _, err := os.Stat(filename); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat history file: %w", err)
		}
		// the file itself is created by the first flush, so read-only
		// invocations never leave locked empty files behind
	} else if file, err := store.Open(filename); err == nil {
		// resuming a session: entries flushed by earlier invocations
		// count toward the logical length
		h.length.Store(int64(file.NumCommands()))
	} else {
		h.log.Debug("could not index existing history file", zap.Error(err))
	}

	if opts.GC {
		h.gc = h.startCollector(CollectorOptions{WaitForShell: true})
	}
	return h, nil
}

func (h *History) resetFields() {
	h.Inps = newCommandField("inp", h, nil)
	h.Tss = newCommandField("ts", h, nil)
	h.Outs = newCommandField("out", h, nil)
	h.Rtns = newCommandField("rtn", h, nil)
	h.Cwds = newCommandField("cwd", h, nil)
}

// Len is the logical number of commands this session has recorded, net of
// entries dropped by flush-time filtering.
func (h *History) Len() int {
	return int(h.length.Load() - h.skipped.Load())
}

func (h *History) SessionID() string { return h.sessionID }
func (h *History) Filename() string  { return h.filename }

// BufferLength is the number of entries not yet flushed.
func (h *History) BufferLength() int { return len(h.buffer) }

// MarkShellReady releases a GC collector that was told to wait for the
// interactive shell to finish initializing.
func (h *History) MarkShellReady() {
	if h.gc != nil {
		h.gc.MarkShellReady()
	}
}

// Append records one executed command, flushing once the buffer reaches
// the configured batch size. It returns the flush handle when a flush was
// triggered. Entries matching the ignore regex, or carrying a leading
// space under ignorespace, are dropped.
func (h *History) Append(cmd domain.CommandEntry) *FlushHandle {
	if !h.remember || h.isIgnored(cmd) {
		return nil
	}
	if h.cfg.Control().IgnoreSpace && cmd.Spc {
		return nil
	}

	cmd.Spc = false
	if !h.saveCwd {
		cmd.Cwd = ""
	}

	h.buffer = append(h.buffer, cmd)
	h.length.Add(1)

	if len(h.buffer) >= h.bufferSize {
		return h.Flush(false)
	}
	return nil
}

// Flush snapshots and empties the buffer, merging it into the session file
// through the access queue. With atExit the merge runs synchronously and
// finalizes the file (end timestamp stamped, lock cleared) even when the
// buffer is empty.
func (h *History) Flush(atExit bool) *FlushHandle {
	if len(h.buffer) == 0 && !atExit {
		return nil
	}
	batch := h.buffer
	h.buffer = nil

	handle := &FlushHandle{done: make(chan struct{})}
	// the queue position is claimed here, on the submitting control flow,
	// so reads and flushes issued after Flush returns are serviced after
	// this batch
	t := h.queue.enqueue()
	run := func() {
		defer close(handle.done)
		release := h.queue.wait(t)
		defer release()
		if err := h.dump(batch, atExit); err != nil {
			handle.err = err
			h.log.Warn("history flush failed", zap.Error(err))
		}
	}
	if atExit {
		run()
	} else {
		go run()
	}
	return handle
}

// Items yields this session's commands in append order (or reversed),
// trailing whitespace stripped from inputs.
func (h *History) Items(newestFirst bool) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		n := h.Len()
		for k := 0; k < n; k++ {
			i := k
			if newestFirst {
				i = n - 1 - k
			}
			item, ok := h.itemAt(i)
			if !ok {
				return
			}
			if !yield(item) {
				return
			}
		}
	}
}

// AllItems yields commands from every history file on disk, then this
// session's own items. Corrupt files are skipped. Waits out any running
// GC so files are not read mid-deletion.
func (h *History) AllItems(newestFirst bool) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		h.waitForGC()
		for _, path := range h.store.List(ports.ListOptions{Sort: true, NewestFirst: newestFirst}) {
			file, err := h.store.Read(path)
			if err != nil {
				h.log.Debug("skipping unreadable history file", zap.String("path", path), zap.Error(err))
				continue
			}
			cmds := file.Cmds
			for k := range cmds {
				i := k
				if newestFirst {
					i = len(cmds) - 1 - k
				}
				if !yield(Item{Inp: rstrip(cmds[i].Inp), Ts: cmds[i].Ts.Start}) {
					return
				}
			}
		}
		for item := range h.Items(newestFirst) {
			if !yield(item) {
				return
			}
		}
	}
}

// Item is one displayed history line.
type Item struct {
	Inp string
	Ts  float64
}

func (h *History) itemAt(i int) (Item, bool) {
	inpAny, err := h.Inps.At(i)
	if err != nil {
		return Item{}, false
	}
	tsAny, err := h.Tss.At(i)
	if err != nil {
		return Item{}, false
	}
	inp, _ := inpAny.(string)
	ts, _ := tsAny.(domain.TimePair)
	return Item{Inp: rstrip(inp), Ts: ts.Start}, true
}

// Info is a structured snapshot of the backend state.
type Info struct {
	Backend      string
	SessionID    string
	Filename     string
	Length       int
	BufferSize   int
	BufferLength int
	Retention    string
	LastGC       string
}

func (h *History) Info() Info {
	info := Info{
		Backend:      "json",
		SessionID:    h.sessionID,
		Filename:     h.filename,
		Length:       h.Len(),
		BufferSize:   h.bufferSize,
		BufferLength: len(h.buffer),
		Retention:    h.cfg.Size,
	}
	if last := h.lastGC.Load(); last != nil {
		info.LastGC = fmt.Sprintf("(%g, %q)", last.Size, string(last.Unit))
	}
	return info
}

// Clear wipes this session's history from memory and disk, keeping the
// session id and other file metadata.
func (h *History) Clear() error {
	h.buffer = nil
	h.resetFields()
	h.length.Store(0)
	h.skipped.Store(0)

	release := h.queue.acquire()
	defer release()

	file, err := h.store.Read(h.filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// nothing flushed yet
			return nil
		}
		return err
	}
	file.Cmds = nil
	return h.store.Write(h.filename, file)
}

// Delete removes every entry whose input matches pattern (anchored at the
// start, like the ignore regex) from the buffer and from every history
// file on disk, and returns the count removed. Corrupt files are skipped,
// not repaired.
func (h *History) Delete(pattern string) (int, error) {
	re, err := compileMatch(pattern)
	if err != nil {
		return 0, fmt.Errorf("compile delete pattern: %w", err)
	}

	deleted := 0
	kept := h.buffer[:0]
	for _, cmd := range h.buffer {
		if re.MatchString(cmd.Inp) {
			deleted++
			continue
		}
		kept = append(kept, cmd)
	}
	h.buffer = kept
	h.length.Add(-int64(deleted))

	h.waitForGC()
	for _, path := range h.store.List(ports.ListOptions{Sort: true}) {
		file, err := h.store.Read(path)
		if err != nil {
			h.log.Debug("skipping unreadable history file", zap.String("path", path), zap.Error(err))
			continue
		}
		removed := 0
		remaining := file.Cmds[:0]
		for _, cmd := range file.Cmds {
			if re.MatchString(cmd.Inp) {
				removed++
				continue
			}
			remaining = append(remaining, cmd)
		}
		if removed == 0 {
			continue
		}
		file.Cmds = remaining
		if err := h.store.Write(path, file); err != nil {
			h.log.Debug("could not rewrite history file", zap.String("path", path), zap.Error(err))
			continue
		}
		deleted += removed
		if path == h.filename {
			// flushed entries of this session just shrank; keep the
			// logical length consistent with the accessors
			h.length.Add(-int64(removed))
		}
	}
	return deleted, nil
}

// RunGC starts a retention pass immediately, optionally blocking until it
// finishes.
func (h *History) RunGC(size *domain.RetentionSpec, blocking, force bool) error {
	h.gc = h.startCollector(CollectorOptions{Size: size, Force: force})
	if blocking {
		for h.gc.Alive() {
			time.Sleep(gcBlockInterval)
		}
		return h.gc.Err()
	}
	return nil
}

func (h *History) startCollector(opts CollectorOptions) *Collector {
	return startCollector(h.store, h.cfg, h.boot, h.clock, h.log, func(r GCResult) {
		h.lastGC.Store(&r)
	}, opts)
}

func (h *History) waitForGC() {
	for h.gc != nil && h.gc.Alive() {
		time.Sleep(gcWaitInterval)
	}
}

func (h *History) isIgnored(cmd domain.CommandEntry) bool {
	return h.ignore != nil && h.ignore.MatchString(cmd.Inp)
}

// compileMatch anchors pattern at the start of the input, the match
// semantics history filters have always had.
func compileMatch(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`\A(?:` + pattern + `)`)
}

func rstrip(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func epoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
