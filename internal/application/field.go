package application

import (
	"fmt"

	"github.com/bnema/shellhist/internal/domain"
)

// CommandField exposes array-like access to one field (inp, ts, rtn, out,
// cwd) across the logical concatenation of flushed history on disk plus
// the in-memory buffer. Reads that land in the buffer tail are served
// without touching the file or the access queue; everything else performs
// one serialized indexed read through the lazy reader.
type CommandField struct {
	field string
	hist  *History
	def   any
}

func newCommandField(field string, hist *History, def any) *CommandField {
	return &CommandField{field: field, hist: hist, def: def}
}

func (f *CommandField) Len() int {
	return f.hist.Len()
}

// At returns the field value at index i. Negative indices resolve against
// the total length. Absent optional fields yield the accessor default;
// disabled history yields empty content.
func (f *CommandField) At(i int) (any, error) {
	if !f.hist.remember {
		return "", nil
	}
	size := f.Len()
	if size == 0 {
		return nil, domain.ErrEmptyHistory
	}
	if i < 0 {
		i += size
	}
	if i < 0 || i >= size {
		return nil, fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, i)
	}

	buf := f.hist.buffer
	if size-len(buf) <= i {
		entry := buf[i+len(buf)-size]
		value, ok := entry.Field(f.field)
		if !ok {
			return f.def, nil
		}
		return value, nil
	}

	release := f.hist.queue.acquire()
	defer release()

	file, err := f.hist.store.Open(f.hist.filename)
	if err != nil {
		return nil, err
	}
	entry, err := file.Command(i)
	if err != nil {
		return nil, err
	}
	value, ok := entry.Field(f.field)
	if !ok {
		return f.def, nil
	}
	return value, nil
}

// Slice returns values for [start, stop), clamped to the valid range with
// negative bounds resolved against the total length.
func (f *CommandField) Slice(start, stop int) ([]any, error) {
	size := f.Len()
	start, stop = clampRange(start, stop, size)
	values := make([]any, 0, stop-start)
	for i := start; i < stop; i++ {
		value, err := f.At(i)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

func clampRange(start, stop, size int) (int, int) {
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 {
		start = 0
	}
	if start > size {
		start = size
	}
	if stop > size {
		stop = size
	}
	if stop < start {
		stop = start
	}
	return start, stop
}
