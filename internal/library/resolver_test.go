package library

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverFillsAllFields(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "Project_Skyline_Seq01_prompt.txt", "a neon rooftop at dusk")
	writeFile(t, fsys, "Project_Skyline_Seq01_script.txt", "INT. ROOFTOP - NIGHT")
	writeFile(t, fsys, "Project_Skyline_Seq01_still.png", "png-bytes")
	writeFile(t, fsys, "Project_Skyline_Seq01_clip.mp4", "mp4-bytes")

	rec := NewStrictRecognizer()
	store := NewStore()
	lib, err := NewScanner(fsys, rec).Scan(context.Background())
	require.NoError(t, err)
	store.Replace(lib)

	resolver := NewResolver(fsys, rec, store)
	af, err := resolver.Resolve(context.Background(), "Project_Skyline_Seq01_still.png")
	require.NoError(t, err)
	require.NotNil(t, af)

	assert.Equal(t, "01", af.SequenceID)
	assert.Equal(t, "Skyline", af.Project)
	assert.Equal(t, "a neon rooftop at dusk", af.Fields[KindPrompt])
	assert.Equal(t, "INT. ROOFTOP - NIGHT", af.Fields[KindScript])
	assert.Equal(t, "Project_Skyline_Seq01_still.png", af.Assets[KindStill])
	assert.Equal(t, "Project_Skyline_Seq01_clip.mp4", af.Assets[KindClip])
}

func TestResolverUnrecognizedFilenameIsNoOp(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "Project_Skyline_Seq01_still.png", "png-bytes")

	rec := NewStrictRecognizer()
	store := NewStore()
	lib, err := NewScanner(fsys, rec).Scan(context.Background())
	require.NoError(t, err)
	store.Replace(lib)

	resolver := NewResolver(fsys, rec, store)
	af, err := resolver.Resolve(context.Background(), "vacation-photo.png")
	require.NoError(t, err)
	assert.Nil(t, af)
}

func TestResolverUnknownSequenceIsNoOp(t *testing.T) {
	fsys := memfs.New()

	rec := NewStrictRecognizer()
	store := NewStore()

	resolver := NewResolver(fsys, rec, store)
	af, err := resolver.Resolve(context.Background(), "Project_Skyline_Seq42_still.png")
	require.NoError(t, err)
	assert.Nil(t, af)
}

func TestResolverMissingPromptLeavesFieldUnset(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "Project_Skyline_Seq02_script.txt", "EXT. HARBOR - DAY")
	writeFile(t, fsys, "Project_Skyline_Seq02_still.png", "png-bytes")

	rec := NewStrictRecognizer()
	store := NewStore()
	lib, err := NewScanner(fsys, rec).Scan(context.Background())
	require.NoError(t, err)
	store.Replace(lib)

	resolver := NewResolver(fsys, rec, store)
	af, err := resolver.Resolve(context.Background(), "Project_Skyline_Seq02_still.png")
	require.NoError(t, err)
	require.NotNil(t, af)

	assert.NotContains(t, af.Fields, KindPrompt)
	assert.Equal(t, "EXT. HARBOR - DAY", af.Fields[KindScript])
}

func TestResolverStripsDirectoryFromDroppedName(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "Project_Skyline_Seq03_prompt.txt", "harbor at dawn")

	rec := NewStrictRecognizer()
	store := NewStore()
	lib, err := NewScanner(fsys, rec).Scan(context.Background())
	require.NoError(t, err)
	store.Replace(lib)

	resolver := NewResolver(fsys, rec, store)
	af, err := resolver.Resolve(context.Background(), "/tmp/downloads/Project_Skyline_Seq03_prompt.txt")
	require.NoError(t, err)
	require.NotNil(t, af)
	assert.Equal(t, "harbor at dawn", af.Fields[KindPrompt])
}

func TestResolverCompanionReadFailure(t *testing.T) {
	fsys := memfs.New()

	rec := NewStrictRecognizer()
	store := NewStore()
	lib := make(Library)
	lib.Insert(Match{SequenceID: "05", Project: "Skyline", Kind: KindScript}, "missing/Project_Skyline_Seq05_script.txt")
	store.Replace(lib)

	resolver := NewResolver(fsys, rec, store)
	_, err := resolver.Resolve(context.Background(), "Project_Skyline_Seq05_still.png")
	require.Error(t, err)
}

func TestResolverLooseConventionSharedWithScanner(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "seq07_prompt.txt", "prompt body")
	writeFile(t, fsys, "seq07_take1.mp3", "mp3-bytes")

	rec := NewLooseRecognizer()
	store := NewStore()
	lib, err := NewScanner(fsys, rec).Scan(context.Background())
	require.NoError(t, err)
	store.Replace(lib)

	resolver := NewResolver(fsys, rec, store)
	af, err := resolver.Resolve(context.Background(), "anything seq07.wav")
	require.NoError(t, err)
	require.NotNil(t, af)
	assert.Equal(t, "prompt body", af.Fields[KindPrompt])
	assert.Equal(t, "seq07_take1.mp3", af.Assets[KindVoiceover])
}
