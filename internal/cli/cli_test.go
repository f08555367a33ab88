package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the XDG dirs at a temp home so commands never touch the
// user's real state or config.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestConnectScanList(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("Project_Skyline_Seq01_prompt.txt", "a neon rooftop at dusk")
	write("Project_Skyline_Seq01_script.txt", "We open high above the city.")
	write("Project_Skyline_Seq02_script.txt", "Down at the water, the day begins.")
	write("notes.txt", "unrelated")

	out, err := run(t, "connect", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 sequences")

	out, err = run(t, "scan")
	require.NoError(t, err)
	assert.Contains(t, out, "2 sequences")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "01|Skyline|prompt,script\n")
	assert.Contains(t, out, "02|Skyline|script\n")
}

func TestResolveCommand(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "Project_Skyline_Seq01_prompt.txt"),
		[]byte("a neon rooftop at dusk"), 0o644))

	_, err := run(t, "connect", dir)
	require.NoError(t, err)

	out, err := run(t, "resolve", "Project_Skyline_Seq01_still.png")
	require.NoError(t, err)
	assert.Contains(t, out, `"sequenceId": "01"`)
	assert.Contains(t, out, "a neon rooftop at dusk")

	out, err = run(t, "resolve", "vacation.png")
	require.NoError(t, err)
	assert.Contains(t, out, "no match")
}

func TestScanWithoutWorkspace(t *testing.T) {
	isolate(t)

	_, err := run(t, "scan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestOpenWithoutIDFallsToPicker(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	_, err := run(t, "connect", dir)
	require.NoError(t, err)

	// No id is a valid invocation; with an empty library the picker is
	// reached and reports there is nothing to choose from.
	_, err = run(t, "open")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sequences in library")
}

func TestOpenUnknownSequence(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "Project_Skyline_Seq01_prompt.txt"),
		[]byte("a neon rooftop at dusk"), 0o644))

	_, err := run(t, "connect", dir)
	require.NoError(t, err)

	_, err = run(t, "open", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in library")
}

func TestDisconnectForgetsReference(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	_, err := run(t, "connect", dir)
	require.NoError(t, err)

	out, err := run(t, "disconnect")
	require.NoError(t, err)
	assert.Contains(t, out, "removed")

	_, err = run(t, "scan")
	require.Error(t, err)
}
