package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

func TestTimePairRoundTrip(t *testing.T) {
	t.Parallel()

	open := TimePair{Start: 100.5}
	data, err := json.Marshal(open)
	require.NoError(t, err)
	assert.JSONEq(t, `[100.5]`, string(data))

	var back TimePair
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, open, back)

	closed := TimePair{Start: 100.5, End: floatPtr(101.25)}
	data, err = json.Marshal(closed)
	require.NoError(t, err)
	assert.JSONEq(t, `[100.5,101.25]`, string(data))

	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, closed, back)
}

func TestTimePairAcceptsNullEnd(t *testing.T) {
	t.Parallel()

	var p TimePair
	require.NoError(t, json.Unmarshal([]byte(`[100.5,null]`), &p))
	assert.Equal(t, 100.5, p.Start)
	assert.Nil(t, p.End)

	require.Error(t, json.Unmarshal([]byte(`[]`), &p))
	require.Error(t, json.Unmarshal([]byte(`"ts"`), &p))
}

func TestTimePairEffective(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5.0, TimePair{Start: 5}.Effective())
	assert.Equal(t, 9.0, TimePair{Start: 5, End: floatPtr(9)}.Effective())
}

func TestCommandEntryRoundTrip(t *testing.T) {
	t.Parallel()

	entry := CommandEntry{
		Inp: "ls -la\n",
		Rtn: 2,
		Ts:  TimePair{Start: 10, End: floatPtr(11)},
		Cwd: "/tmp",
		Out: strPtr("total 0\n"),
		Spc: true,
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var back CommandEntry
	require.NoError(t, json.Unmarshal(data, &back))

	// the transient space marker is never persisted
	entry.Spc = false
	assert.Equal(t, entry, back)
}

func TestCommandEntryOptionalFieldsOmitted(t *testing.T) {
	t.Parallel()

	entry := CommandEntry{Inp: "pwd", Rtn: 0, Ts: TimePair{Start: 1}}
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "cwd")
	assert.NotContains(t, string(data), "out")
	assert.NotContains(t, string(data), "spc")
}

func TestCommandEntryField(t *testing.T) {
	t.Parallel()

	entry := CommandEntry{Inp: "pwd", Rtn: 1, Ts: TimePair{Start: 2}}

	v, ok := entry.Field("inp")
	require.True(t, ok)
	assert.Equal(t, "pwd", v)

	v, ok = entry.Field("rtn")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = entry.Field("cwd")
	assert.False(t, ok)
	_, ok = entry.Field("out")
	assert.False(t, ok)
	_, ok = entry.Field("nope")
	assert.False(t, ok)
}

func TestSessionFileRoundTripPreservesCmdsAndMetadata(t *testing.T) {
	t.Parallel()

	file := SessionFile{
		SessionID: "abc",
		Ts:        TimePair{Start: 100, End: floatPtr(200)},
		Locked:    false,
		Meta:      map[string]any{"shell": "zsh"},
		Cmds: []CommandEntry{
			{Inp: "echo one", Rtn: 0, Ts: TimePair{Start: 101, End: floatPtr(102)}},
			{Inp: "echo two", Rtn: 1, Ts: TimePair{Start: 103, End: floatPtr(104)}, Cwd: "/home"},
		},
	}

	data, err := json.Marshal(file)
	require.NoError(t, err)

	var back SessionFile
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, file.SessionID, back.SessionID)
	assert.Equal(t, file.Ts, back.Ts)
	assert.Equal(t, file.Locked, back.Locked)
	assert.Equal(t, file.Meta, back.Meta)
	assert.Equal(t, file.Cmds, back.Cmds)
}

func TestSessionFileMarshalEmitsEmptyCmdsArray(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(SessionFile{SessionID: "abc"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cmds":[]`)
}
