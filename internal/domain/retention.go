package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RetentionUnit selects which metric a retention limit is counted in.
type RetentionUnit string

const (
	UnitCommands RetentionUnit = "commands"
	UnitFiles    RetentionUnit = "files"
	UnitSeconds  RetentionUnit = "s"
	UnitBytes    RetentionUnit = "b"
)

// RetentionSpec is a numeric limit in one of the four retention units.
type RetentionSpec struct {
	Limit int64
	Unit  RetentionUnit
}

func (s RetentionSpec) String() string {
	return fmt.Sprintf("(%d, %q)", s.Limit, string(s.Unit))
}

// unitAliases maps accepted spellings to a canonical unit and a multiplier
// applied to the numeric limit.
var unitAliases = map[string]struct {
	unit  RetentionUnit
	scale int64
}{
	"":         {UnitCommands, 1},
	"c":        {UnitCommands, 1},
	"cmd":      {UnitCommands, 1},
	"cmds":     {UnitCommands, 1},
	"command":  {UnitCommands, 1},
	"commands": {UnitCommands, 1},
	"f":        {UnitFiles, 1},
	"file":     {UnitFiles, 1},
	"files":    {UnitFiles, 1},
	"s":        {UnitSeconds, 1},
	"sec":      {UnitSeconds, 1},
	"second":   {UnitSeconds, 1},
	"seconds":  {UnitSeconds, 1},
	"m":        {UnitSeconds, 60},
	"min":      {UnitSeconds, 60},
	"mins":     {UnitSeconds, 60},
	"h":        {UnitSeconds, 3600},
	"hr":       {UnitSeconds, 3600},
	"hour":     {UnitSeconds, 3600},
	"hours":    {UnitSeconds, 3600},
	"d":        {UnitSeconds, 86400},
	"day":      {UnitSeconds, 86400},
	"days":     {UnitSeconds, 86400},
	"b":        {UnitBytes, 1},
	"byte":     {UnitBytes, 1},
	"bytes":    {UnitBytes, 1},
	"kb":       {UnitBytes, 1024},
	"mb":       {UnitBytes, 1024 * 1024},
	"gb":       {UnitBytes, 1024 * 1024 * 1024},
	"tb":       {UnitBytes, 1024 * 1024 * 1024 * 1024},
}

// ParseRetentionSpec parses strings like "8128 commands", "200 files",
// "90 d" or "512 kb" into a canonical spec.
func ParseRetentionSpec(raw string) (RetentionSpec, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if len(fields) == 0 || len(fields) > 2 {
		return RetentionSpec{}, fmt.Errorf("parse retention size %q: want \"<limit> <unit>\"", raw)
	}
	limit, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return RetentionSpec{}, fmt.Errorf("parse retention limit %q: %w", fields[0], err)
	}
	unit := ""
	if len(fields) == 2 {
		unit = fields[1]
	}
	alias, ok := unitAliases[unit]
	if !ok {
		return RetentionSpec{}, fmt.Errorf("%w: %q", ErrUnknownRetentionUnit, unit)
	}
	return RetentionSpec{Limit: limit * alias.scale, Unit: alias.unit}, nil
}

// FileInfo describes one history file for retention planning. It is always
// derived fresh by scanning, never cached across GC runs.
type FileInfo struct {
	Timestamp float64 // end time if present, else start time
	NumCmds   int
	Path      string
	Size      int64
}

// SortFileInfos orders files oldest timestamp first, tie-broken by the
// remaining fields so the order is deterministic.
func SortFileInfos(files []FileInfo) {
	sort.Slice(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		if a.NumCmds != b.NumCmds {
			return a.NumCmds < b.NumCmds
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Size < b.Size
	})
}

// PlanRemoval dispatches to the policy for the given unit. Files must be
// sorted oldest first. It returns the amount of history over the limit and
// the files to remove.
func PlanRemoval(unit RetentionUnit, limit int64, now float64, files []FileInfo) (float64, []FileInfo, error) {
	switch unit {
	case UnitCommands:
		over, rm := CommandsToRemove(limit, files)
		return float64(over), rm, nil
	case UnitFiles:
		over, rm := FilesToRemove(limit, files)
		return float64(over), rm, nil
	case UnitSeconds:
		over, rm := SecondsToRemove(limit, now, files)
		return over, rm, nil
	case UnitBytes:
		over, rm := BytesToRemove(limit, files)
		return float64(over), rm, nil
	}
	return 0, nil, fmt.Errorf("%w: %q", ErrUnknownRetentionUnit, string(unit))
}

// CommandsToRemove accumulates command counts newest first and stops at the
// first file that would push the running total over the limit; everything
// older is removed. When even the newest file alone exceeds the limit the
// scan stops with zero files kept and, deliberately, zero files removed.
// That degenerate slice is long-standing observable behavior; do not
// "fix" it to remove everything.
func CommandsToRemove(limit int64, files []FileInfo) (int64, []FileInfo) {
	n := 0
	var kept int64
	for i := len(files) - 1; i >= 0; i-- {
		if kept+int64(files[i].NumCmds) > limit {
			break
		}
		kept += int64(files[i].NumCmds)
		n++
	}
	if n == 0 {
		return 0, nil
	}
	rm := files[:len(files)-n]
	var removed int64
	for _, f := range rm {
		removed += int64(f.NumCmds)
	}
	return removed, rm
}

// FilesToRemove removes the oldest files in excess of the file-count limit.
func FilesToRemove(limit int64, files []FileInfo) (int64, []FileInfo) {
	if int64(len(files)) <= limit {
		return 0, nil
	}
	rm := files[:int64(len(files))-limit]
	return int64(len(rm)), rm
}

// SecondsToRemove removes every file at least limit seconds old, scanning
// oldest first and stopping at the first file younger than the limit. The
// overage reports how far the oldest removed file exceeds the limit.
func SecondsToRemove(limit int64, now float64, files []FileInfo) (float64, []FileInfo) {
	n := 0
	for _, f := range files {
		if now-f.Timestamp < float64(limit) {
			break
		}
		n++
	}
	rm := files[:n]
	var over float64
	if n > 0 {
		over = now - float64(limit) - rm[0].Timestamp
	}
	return over, rm
}

// BytesToRemove is CommandsToRemove with byte sizes as the metric,
// including the same zero-kept degenerate case.
func BytesToRemove(limit int64, files []FileInfo) (int64, []FileInfo) {
	n := 0
	var kept int64
	for i := len(files) - 1; i >= 0; i-- {
		if kept+files[i].Size > limit {
			break
		}
		kept += files[i].Size
		n++
	}
	if n == 0 {
		return 0, nil
	}
	rm := files[:len(files)-n]
	var removed int64
	for _, f := range rm {
		removed += f.Size
	}
	return removed, rm
}
