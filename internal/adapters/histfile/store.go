// Package histfile stores session history as one JSON document per session,
// named shellhist-<sessionid>.json under <data>/history. The parent data
// directory is also scanned so files from older layouts keep working.
package histfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gowebpki/jcs"
	"go.uber.org/zap"

	"github.com/bnema/shellhist/internal/adapters/lazyjson"
	"github.com/bnema/shellhist/internal/domain"
	"github.com/bnema/shellhist/internal/ports"
)

const (
	historySubdir   = "history"
	historyFileMode = 0o600
	historyDirMode  = 0o700
	tempFilePattern = ".shellhist-*.json.tmp"
)

type Store struct {
	historyDir string
	legacyDir  string
	customFile string
	log        *zap.Logger
}

var _ ports.FileStore = (*Store)(nil)

// New creates the primary history directory under dataDir if needed.
// customFile, when non-empty, is an explicit session file path that is
// always included in enumeration.
func New(dataDir, customFile string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	historyDir := filepath.Join(dataDir, historySubdir)
	if err := os.MkdirAll(historyDir, historyDirMode); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	if customFile != "" {
		customFile, err = filepath.Abs(customFile)
		if err != nil {
			return nil, fmt.Errorf("resolve history file: %w", err)
		}
	}
	return &Store{
		historyDir: historyDir,
		legacyDir:  dataDir,
		customFile: customFile,
		log:        log,
	}, nil
}

func (s *Store) Path(sessionID string) string {
	return filepath.Join(s.historyDir, domain.FilePrefix+sessionID+domain.FileSuffix)
}

func (s *Store) SessionID(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, domain.FileSuffix)
	return strings.TrimPrefix(base, domain.FilePrefix)
}

func (s *Store) List(opts ports.ListOptions) []string {
	type entry struct {
		path  string
		mtime float64
	}
	needMtime := opts.Sort || opts.ModifiedSince != nil

	var entries []entry
	for _, dir := range []string{s.historyDir, s.legacyDir} {
		names, err := os.ReadDir(dir)
		if err != nil {
			s.log.Debug("could not list history directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		for _, name := range names {
			if name.IsDir() {
				continue
			}
			base := name.Name()
			if !strings.HasPrefix(base, domain.FilePrefix) || !strings.HasSuffix(base, domain.FileSuffix) {
				continue
			}
			path := filepath.Join(dir, base)
			var mtime float64
			if needMtime {
				info, err := name.Info()
				if err != nil {
					continue
				}
				mtime = float64(info.ModTime().UnixNano()) / 1e9
			}
			if opts.ModifiedSince != nil && mtime <= *opts.ModifiedSince {
				continue
			}
			entries = append(entries, entry{path: path, mtime: mtime})
		}
	}
	if opts.Sort {
		sort.SliceStable(entries, func(i, j int) bool {
			if opts.NewestFirst {
				return entries[i].mtime > entries[j].mtime
			}
			return entries[i].mtime < entries[j].mtime
		})
	}

	paths := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		paths = append(paths, e.path)
	}
	if s.customFile != "" && !contains(paths, s.customFile) {
		paths = append([]string{s.customFile}, paths...)
	}
	return paths
}

func (s *Store) Open(path string) (ports.LazyFile, error) {
	return lazyjson.Open(path)
}

func (s *Store) Read(path string) (domain.SessionFile, error) {
	doc, err := lazyjson.Open(path)
	if err != nil {
		return domain.SessionFile{}, err
	}
	return doc.Load()
}

// Write serializes the document with sorted keys and a trailing newline,
// then swaps it into place atomically.
func (s *Store) Write(path string, file domain.SessionFile) error {
	data, err := Encode(file)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, historyDirMode); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp history file: %w", err)
	}
	if err := tempFile.Chmod(historyFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp history file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp history file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}
	cleanup = false
	return nil
}

func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove history file: %w", err)
	}
	return nil
}

func (s *Store) Stat(path string) (ports.FileStat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ports.FileStat{}, fmt.Errorf("stat history file: %w", err)
	}
	return ports.FileStat{
		Size:  info.Size(),
		MTime: float64(info.ModTime().UnixNano()) / 1e9,
	}, nil
}

// Encode renders a session file in its canonical on-disk form: RFC 8785
// key ordering, LF newline at the end.
func Encode(file domain.SessionFile) ([]byte, error) {
	data, err := json.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("encode history file: %w", err)
	}
	canonical, err := jcs.Transform(data)
	if err != nil {
		return nil, fmt.Errorf("canonicalize history file: %w", err)
	}
	return append(canonical, '\n'), nil
}

// Decode parses session file bytes, treating an empty document as zero
// commands.
func Decode(data []byte) (domain.SessionFile, error) {
	doc, err := lazyjson.Parse(data)
	if err != nil {
		return domain.SessionFile{}, err
	}
	return doc.Load()
}

func contains(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}
