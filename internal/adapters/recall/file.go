// Package recall persists pulled command lines as a plain line-per-entry
// file, the format interactive prompts load their recall history from.
package recall

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/shellhist/internal/ports"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

type FileBuffer struct {
	path string
	mu   sync.Mutex
}

var _ ports.Recaller = (*FileBuffer)(nil)

func NewFileBuffer(path string) *FileBuffer {
	return &FileBuffer{path: filepath.Clean(path)}
}

func (b *FileBuffer) AppendString(line string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(b.path), dirMode); err != nil {
		return fmt.Errorf("create recall directory: %w", err)
	}
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return fmt.Errorf("open recall file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append recall line: %w", err)
	}
	return nil
}

// Lines returns the buffered lines oldest first, for handing to a prompt's
// history option at startup.
func (b *FileBuffer) Lines() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.Open(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open recall file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recall file: %w", err)
	}
	return lines, nil
}
