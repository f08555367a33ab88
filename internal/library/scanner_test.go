package library

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fsys billy.Filesystem, path, content string) {
	t.Helper()
	if dir := filepath.Dir(path); dir != "." {
		require.NoError(t, fsys.MkdirAll(dir, 0o755))
	}
	require.NoError(t, util.WriteFile(fsys, path, []byte(content), 0o644))
}

func TestScannerStrict(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "Project_Skyline_Seq01_prompt.txt", "a neon rooftop at dusk")
	writeFile(t, fsys, "Project_Skyline_Seq01_still.png", "png-bytes")
	writeFile(t, fsys, "Project_Skyline_Seq02_script.txt", "INT. ROOFTOP - NIGHT")
	writeFile(t, fsys, "notes.txt", "not part of any sequence")
	writeFile(t, fsys, "Project_Skyline_Seq03_still.exe", "wrong extension")

	scanner := NewScanner(fsys, NewStrictRecognizer())
	lib, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, lib, 2)

	entry := lib["01"]
	require.NotNil(t, entry)
	assert.Equal(t, "Skyline", entry.Project)
	assert.Equal(t, []string{"prompt", "still"}, entry.Kinds())
	assert.Equal(t, "Project_Skyline_Seq01_still.png", entry.Assets["still"].Path)

	entry = lib["02"]
	require.NotNil(t, entry)
	assert.Equal(t, []string{"script"}, entry.Kinds())

	assert.Nil(t, lib["03"], "disallowed extension must not be indexed")
}

func TestScannerMergesAcrossDirectories(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "Project_Alpha_Seq01_still.png", "first")
	writeFile(t, fsys, "renders/Project_Beta_Seq01_still.png", "second")
	writeFile(t, fsys, "audio/Project_Alpha_Seq01_voiceover.mp3", "voice")

	scanner := NewScanner(fsys, NewStrictRecognizer())
	lib, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, lib, 1)
	entry := lib["01"]
	require.NotNil(t, entry)

	// Same ID and kind: the lexically later path wins the kind slot.
	assert.Equal(t, "renders/Project_Beta_Seq01_still.png", entry.Assets["still"].Path)
	assert.Equal(t, "Beta", entry.Project)
	assert.Equal(t, "audio/Project_Alpha_Seq01_voiceover.mp3", entry.Assets["voiceover"].Path)
}

func TestScannerSkipsDotDirectories(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, ".vibestudio/Project_Hidden_Seq09_still.png", "hidden")
	writeFile(t, fsys, ".Project_Hidden_Seq08_still.png", "hidden file")
	writeFile(t, fsys, "Project_Seen_Seq01_still.png", "visible")

	scanner := NewScanner(fsys, NewStrictRecognizer())
	lib, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, lib, 1)
	assert.NotNil(t, lib["01"])
}

func TestScannerLoose(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "seq01_prompt.txt", "prompt text")
	writeFile(t, fsys, "seq01 draft.txt", "script text")
	writeFile(t, fsys, "render-seq01.jpg", "jpg-bytes")
	writeFile(t, fsys, "unrelated.jpg", "no marker")

	scanner := NewScanner(fsys, NewLooseRecognizer())
	lib, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, lib, 1)
	entry := lib["01"]
	require.NotNil(t, entry)
	assert.Equal(t, []string{"prompt", "script", "still"}, entry.Kinds())
}

func TestScannerCancelledContext(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "Project_Skyline_Seq01_still.png", "png-bytes")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := NewScanner(fsys, NewStrictRecognizer())
	_, err := scanner.Scan(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScannerEnumerationFailure(t *testing.T) {
	fsys := osfs.New(filepath.Join(t.TempDir(), "does-not-exist"))

	scanner := NewScanner(fsys, NewStrictRecognizer())
	_, err := scanner.Scan(context.Background())
	require.Error(t, err)
}
