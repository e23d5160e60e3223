package ports

import "github.com/bnema/shellhist/internal/domain"

// LazyFile is an indexed view over one session file. Implementations must
// be able to answer the typed accessors and serve a single command entry
// without materializing the whole document; Load materializes everything.
type LazyFile interface {
	Get(key string, def any) any
	SessionID() string
	Locked() bool
	TimeRange() domain.TimePair
	NumCommands() int
	Command(i int) (domain.CommandEntry, error)
	Load() (domain.SessionFile, error)
}
