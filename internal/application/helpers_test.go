package application

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bnema/shellhist/internal/adapters/histfile"
	"github.com/bnema/shellhist/internal/config"
	"github.com/bnema/shellhist/internal/domain"
	"github.com/bnema/shellhist/internal/ports"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(epoch float64) *fakeClock {
	return &fakeClock{now: time.Unix(0, int64(epoch*1e9))}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) set(epoch float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Unix(0, int64(epoch*1e9))
}

type fakeBoot struct {
	at time.Time
}

func (b fakeBoot) BootTime() (time.Time, error) {
	return b.at, nil
}

type fakeRecaller struct {
	mu    sync.Mutex
	lines []string
}

func (r *fakeRecaller) AppendString(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	return nil
}

func (r *fakeRecaller) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func testConfig() *config.Config {
	return &config.Config{
		Size:       "8128 commands",
		SaveCwd:    true,
		BufferSize: 100,
		Enabled:    true,
	}
}

func testStore(t *testing.T) *histfile.Store {
	t.Helper()
	store, err := histfile.New(t.TempDir(), "", nil)
	require.NoError(t, err)
	return store
}

func newTestHistory(t *testing.T, cfg *config.Config, opts Options) (*History, *histfile.Store) {
	t.Helper()
	store := testStore(t)
	h, err := New(cfg, store, opts)
	require.NoError(t, err)
	return h, store
}

func floatPtr(v float64) *float64 { return &v }

func entry(inp string, rtn int, start float64) domain.CommandEntry {
	end := start + 1
	return domain.CommandEntry{Inp: inp, Rtn: rtn, Ts: domain.TimePair{Start: start, End: &end}}
}

// writeSession plants an unlocked, finished session file for another
// session with the given end timestamps.
func writeSession(t *testing.T, store ports.FileStore, id string, ends ...float64) string {
	t.Helper()
	file := domain.SessionFile{
		SessionID: id,
		Ts:        domain.TimePair{Start: 1, End: floatPtr(1)},
	}
	for _, end := range ends {
		e := end
		file.Cmds = append(file.Cmds, domain.CommandEntry{
			Inp: "cmd",
			Ts:  domain.TimePair{Start: e - 0.5, End: &e},
		})
		if file.Ts.End == nil || *file.Ts.End < e {
			file.Ts.End = floatPtr(e)
		}
	}
	path := store.Path(id)
	require.NoError(t, store.Write(path, file))
	return path
}
