package script

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/internal/testutil"
)

const shoutScript = `-- @name: shout
-- @category: Text
-- @description: Upper-cases the input.
-- @version: 1.0.0

function exec(input)
  return string.upper(input)
end
`

func writeScripts(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"shout.lua":      shoutScript,
		"sub/double.lua": "return input * 2",
		"broken.lua":     "function (",
		"notes.txt":      "not a script",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestManagerDiscover(t *testing.T) {
	capture, logger := testutil.NewLogCapture()
	m := NewManager(writeScripts(t), logger)
	require.NoError(t, m.Discover())

	scripts := m.List()
	require.Len(t, scripts, 2)
	assert.Equal(t, "double", scripts[0].Name)
	assert.Equal(t, "Scripting", scripts[0].Category)
	assert.Equal(t, "shout", scripts[1].Name)

	shout, ok := m.Get("shout")
	require.True(t, ok)
	assert.Equal(t, "Text", shout.Category)
	assert.Equal(t, "Upper-cases the input.", shout.Description)
	assert.Equal(t, "1.0.0", shout.Version)
	assert.Equal(t, "pinflow.script.shout", shout.TypeID())

	_, ok = m.Get("broken")
	assert.False(t, ok)
	assert.True(t, capture.HasEntry(slog.LevelWarn, "skipping script"))
}

func TestManagerDiscoverMissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, m.Discover(), os.ErrNotExist)
}

func TestManagerRegister(t *testing.T) {
	m := NewManager(writeScripts(t), nil)
	require.NoError(t, m.Discover())

	reg := pinflow.NewRegistry()
	require.NoError(t, m.Register(reg))
	assert.Equal(t, []string{"pinflow.script.double", "pinflow.script.shout"}, reg.List())
	assert.ErrorIs(t, m.Register(reg), pinflow.ErrDuplicateNodeType)

	n, err := reg.Create("pinflow.script.shout")
	require.NoError(t, err)
	assert.True(t, n.Pure())
	assert.Equal(t, "Text", n.Category())

	in, err := n.Input("input")
	require.NoError(t, err)
	require.NoError(t, in.(*pinflow.InputArgumentPin).Set("hello"))

	out, err := n.Output("result")
	require.NoError(t, err)
	got, err := out.(*pinflow.OutputArgumentPin).Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HELLO", got)
}

func TestLoadScript(t *testing.T) {
	dir := writeScripts(t)
	m := NewManager(dir, nil)

	s, err := m.LoadScript(filepath.Join(dir, "sub", "double.lua"))
	require.NoError(t, err)
	assert.Equal(t, "double", s.Name)
	assert.Equal(t, "return input * 2", s.Content)

	_, err = m.LoadScript(filepath.Join(dir, "broken.lua"))
	assert.ErrorIs(t, err, ErrScript)

	_, err = m.LoadScript(filepath.Join(dir, "absent.lua"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
