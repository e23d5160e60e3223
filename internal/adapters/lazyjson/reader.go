// Package lazyjson reads session files without materializing the whole
// document. The file is split once into raw top-level values; individual
// cmds elements are decoded on demand.
package lazyjson

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/shellhist/internal/domain"
	"github.com/bnema/shellhist/internal/ports"
)

type Doc struct {
	raw  []byte
	top  map[string]json.RawMessage
	cmds []json.RawMessage
}

var _ ports.LazyFile = (*Doc)(nil)

// Open indexes the session file at path. An empty (or whitespace-only) file
// is a valid zero-command document; malformed JSON reports
// domain.ErrCorruptFile.
func Open(path string) (*Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}
	return Parse(data)
}

// Parse indexes an in-memory session document.
func Parse(data []byte) (*Doc, error) {
	d := &Doc{raw: data}
	if len(strings.TrimSpace(string(data))) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(data, &d.top); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}
	if raw, ok := d.top["cmds"]; ok {
		if err := json.Unmarshal(raw, &d.cmds); err != nil {
			return nil, fmt.Errorf("%w: cmds is not an array: %v", domain.ErrCorruptFile, err)
		}
	}
	return d, nil
}

func (d *Doc) Get(key string, def any) any {
	raw, ok := d.top[key]
	if !ok {
		return def
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return def
	}
	return v
}

func (d *Doc) SessionID() string {
	raw, ok := d.top["sessionid"]
	if !ok {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id
}

func (d *Doc) Locked() bool {
	raw, ok := d.top["locked"]
	if !ok {
		return false
	}
	var locked bool
	if err := json.Unmarshal(raw, &locked); err != nil {
		return false
	}
	return locked
}

func (d *Doc) TimeRange() domain.TimePair {
	raw, ok := d.top["ts"]
	if !ok {
		return domain.TimePair{}
	}
	var ts domain.TimePair
	if err := json.Unmarshal(raw, &ts); err != nil {
		return domain.TimePair{}
	}
	return ts
}

func (d *Doc) NumCommands() int {
	return len(d.cmds)
}

// Command materializes the i-th command entry and nothing else.
func (d *Doc) Command(i int) (domain.CommandEntry, error) {
	if i < 0 || i >= len(d.cmds) {
		return domain.CommandEntry{}, fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, i)
	}
	var cmd domain.CommandEntry
	if err := json.Unmarshal(d.cmds[i], &cmd); err != nil {
		return domain.CommandEntry{}, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}
	return cmd, nil
}

func (d *Doc) Load() (domain.SessionFile, error) {
	if len(d.top) == 0 {
		return domain.SessionFile{Meta: map[string]any{}}, nil
	}
	var file domain.SessionFile
	if err := json.Unmarshal(d.raw, &file); err != nil {
		return domain.SessionFile{}, fmt.Errorf("%w: %v", domain.ErrCorruptFile, err)
	}
	return file, nil
}
