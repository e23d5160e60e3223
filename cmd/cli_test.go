package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/shellhist/internal/version"
)

func executeCLI(t *testing.T, home, session string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("SHELLHIST_SESSION", session)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRecordThenShow(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "sess", "record", "--status", "0", "--", "echo", "hello")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "sess", "show")
	require.NoError(t, err)
	assert.Equal(t, "echo hello\n", stdout)
}

func TestRecordPersistsWithTinyBufferSize(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SHELLHIST_BUFFER_SIZE", "1")

	_, _, err := executeCLI(t, home, "sess", "record", "--", "echo", "hello")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "sess", "show")
	require.NoError(t, err)
	assert.Equal(t, "echo hello\n", stdout)
}

func TestReadOnlyCommandsLeaveNoSessionFile(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "sess", "show")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "sess", "info")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(home, ".local", "share", "shellhist", "history", "shellhist-sess.json"))
	require.True(t, os.IsNotExist(err))
}

func TestShowIsPerSession(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "a", "record", "--", "echo", "from-a")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "b", "show")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestShowAllMergesSessions(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "a", "record", "--", "echo", "one")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "b", "record", "--", "echo", "two")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "c", "show", "--all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "echo one")
	assert.Contains(t, stdout, "echo two")
}

func TestRecordHonorsIgnoreSpace(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SHELLHIST_HISTCONTROL", "ignorespace")

	_, _, err := executeCLI(t, home, "sess", "record", "--space", "--", "secret", "deploy")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "sess", "show")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestInfoReportsBackendState(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "sess", "record", "--", "ls")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "sess", "info")
	require.NoError(t, err)
	assert.Contains(t, stdout, "backend: json")
	assert.Contains(t, stdout, "sessionid: sess")
	assert.Contains(t, stdout, "length: 1")
	assert.Contains(t, stdout, "gc options: 8128 commands")
}

func TestClearEmptiesOwnSession(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "sess", "record", "--", "echo", "gone")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "sess", "clear")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "sess", "show")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestDeleteRemovesAcrossSessions(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "a", "record", "--", "secret", "deploy")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "a", "record", "--", "ls")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "b", "delete", "secret .*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "deleted 1 entries")

	stdout, _, err = executeCLI(t, home, "c", "show", "--all")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "secret deploy")
	assert.Contains(t, stdout, "ls")
}

func TestGCForceRemovesFinishedSessions(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "a", "record", "--", "echo", "one")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "b", "record", "--", "echo", "two")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "c", "gc", "--size", "0 files", "--force")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "d", "show", "--all")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "echo")
}

func TestGCRejectsUnknownUnit(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "sess", "gc", "--size", "10 parsecs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsecs")
}

func TestPullImportsIntoRecallBuffer(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "a", "record", "--", "echo", "shared")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "b", "pull", "--show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "echo shared")
	assert.Contains(t, stdout, "imported 1 commands")

	recall, err := os.ReadFile(filepath.Join(home, ".local", "share", "shellhist", "recall_history"))
	require.NoError(t, err)
	assert.Equal(t, "echo shared\n", string(recall))
}

func TestConfigInitThenShow(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "sess", "config", "init")
	require.NoError(t, err)
	path := filepath.Join(home, ".config", "shellhist", "config.toml")
	assert.Contains(t, stdout, path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "sess", "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	stdout, _, err = executeCLI(t, home, "sess", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "size = '8128 commands'")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "sess", "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "sess", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
