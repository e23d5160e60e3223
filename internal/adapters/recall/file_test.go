package recall

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndLines(t *testing.T) {
	t.Parallel()

	buf := NewFileBuffer(filepath.Join(t.TempDir(), "recall", "history"))

	require.NoError(t, buf.AppendString("echo one"))
	require.NoError(t, buf.AppendString("echo two"))

	lines, err := buf.Lines()
	require.NoError(t, err)
	assert.Equal(t, []string{"echo one", "echo two"}, lines)
}

func TestLinesMissingFile(t *testing.T) {
	t.Parallel()

	buf := NewFileBuffer(filepath.Join(t.TempDir(), "absent"))
	lines, err := buf.Lines()
	require.NoError(t, err)
	assert.Empty(t, lines)
}
