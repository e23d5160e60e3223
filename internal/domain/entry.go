package domain

import (
	"encoding/json"
	"fmt"
)

const (
	FilePrefix = "shellhist-"
	FileSuffix = ".json"
)

// TimePair is a [start, end] pair of epoch seconds. End is absent while the
// measured span (a command, or a whole session) is still running.
type TimePair struct {
	Start float64
	End   *float64
}

// Effective returns the end time when present, otherwise the start time.
func (p TimePair) Effective() float64 {
	if p.End != nil {
		return *p.End
	}
	return p.Start
}

func (p TimePair) MarshalJSON() ([]byte, error) {
	if p.End == nil {
		return json.Marshal([]float64{p.Start})
	}
	return json.Marshal([]float64{p.Start, *p.End})
}

func (p *TimePair) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode time pair: %w", err)
	}
	if len(raw) == 0 || raw[0] == nil {
		return fmt.Errorf("decode time pair: missing start time")
	}
	p.Start = *raw[0]
	p.End = nil
	if len(raw) > 1 && raw[1] != nil {
		end := *raw[1]
		p.End = &end
	}
	return nil
}

// CommandEntry is one executed command. Spc marks a leading space on the
// input line; it only drives ignorespace filtering and is never persisted.
type CommandEntry struct {
	Inp string
	Rtn int
	Ts  TimePair
	Cwd string
	Out *string
	Spc bool
}

// Field returns the named persisted field, reporting absence for the
// optional ones.
func (c CommandEntry) Field(name string) (any, bool) {
	switch name {
	case "inp":
		return c.Inp, true
	case "rtn":
		return c.Rtn, true
	case "ts":
		return c.Ts, true
	case "cwd":
		if c.Cwd == "" {
			return nil, false
		}
		return c.Cwd, true
	case "out":
		if c.Out == nil {
			return nil, false
		}
		return *c.Out, true
	}
	return nil, false
}

func (c CommandEntry) MarshalJSON() ([]byte, error) {
	obj := map[string]any{
		"inp": c.Inp,
		"rtn": c.Rtn,
		"ts":  c.Ts,
	}
	if c.Cwd != "" {
		obj["cwd"] = c.Cwd
	}
	if c.Out != nil {
		obj["out"] = *c.Out
	}
	return json.Marshal(obj)
}

func (c *CommandEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Inp string   `json:"inp"`
		Rtn int      `json:"rtn"`
		Ts  TimePair `json:"ts"`
		Cwd string   `json:"cwd"`
		Out *string  `json:"out"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode command entry: %w", err)
	}
	c.Inp = raw.Inp
	c.Rtn = raw.Rtn
	c.Ts = raw.Ts
	c.Cwd = raw.Cwd
	c.Out = raw.Out
	c.Spc = false
	return nil
}

// SessionFile is the persisted unit: one JSON document per shell session.
// Meta holds caller-supplied top-level keys next to the reserved ones.
type SessionFile struct {
	SessionID string
	Ts        TimePair
	Locked    bool
	Meta      map[string]any
	Cmds      []CommandEntry
}

func (s SessionFile) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(s.Meta)+4)
	for k, v := range s.Meta {
		obj[k] = v
	}
	obj["sessionid"] = s.SessionID
	obj["ts"] = s.Ts
	obj["locked"] = s.Locked
	cmds := s.Cmds
	if cmds == nil {
		cmds = []CommandEntry{}
	}
	obj["cmds"] = cmds
	return json.Marshal(obj)
}

func (s *SessionFile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode session file: %w", err)
	}
	*s = SessionFile{Meta: map[string]any{}}
	for key, value := range raw {
		switch key {
		case "sessionid":
			if err := json.Unmarshal(value, &s.SessionID); err != nil {
				return fmt.Errorf("decode sessionid: %w", err)
			}
		case "ts":
			if err := json.Unmarshal(value, &s.Ts); err != nil {
				return fmt.Errorf("decode session time pair: %w", err)
			}
		case "locked":
			if err := json.Unmarshal(value, &s.Locked); err != nil {
				return fmt.Errorf("decode locked flag: %w", err)
			}
		case "cmds":
			if err := json.Unmarshal(value, &s.Cmds); err != nil {
				return fmt.Errorf("decode cmds: %w", err)
			}
		default:
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return fmt.Errorf("decode metadata key %q: %w", key, err)
			}
			s.Meta[key] = v
		}
	}
	return nil
}
