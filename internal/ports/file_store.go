package ports

import "github.com/bnema/shellhist/internal/domain"

// ListOptions controls history file enumeration.
type ListOptions struct {
	Sort        bool
	NewestFirst bool
	// ModifiedSince, when set, keeps only files modified strictly after
	// this epoch time.
	ModifiedSince *float64
}

// FileStat is the subset of file metadata retention planning needs.
type FileStat struct {
	Size  int64
	MTime float64
}

// FileStore owns the on-disk layout of session files: naming, enumeration
// across the current and legacy data directories, and whole-file reads and
// writes. Open returns a lazy view; Read materializes the whole document.
// Both report domain.ErrCorruptFile for malformed documents.
type FileStore interface {
	Path(sessionID string) string
	SessionID(path string) string
	List(opts ListOptions) []string
	Open(path string) (LazyFile, error)
	Read(path string) (domain.SessionFile, error)
	Write(path string, file domain.SessionFile) error
	Remove(path string) error
	Stat(path string) (FileStat, error)
}
