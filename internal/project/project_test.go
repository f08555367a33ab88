package project

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DankHaloRing/Vibe-Studio1/internal/library"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	fsys := memfs.New()

	_, err := Load(fsys)
	require.ErrorIs(t, err, ErrNoProject)

	p := New("Skyline")
	require.NotEmpty(t, p.ID)
	seq := p.EnsureSequence("01")
	seq.Title = "Opening"
	seq.Prompt = "a neon rooftop at dusk"
	seq.SetAsset(library.KindStill, "Project_Skyline_Seq01_still.png")

	require.NoError(t, Save(fsys, p))

	loaded, err := Load(fsys)
	require.NoError(t, err)
	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, "Skyline", loaded.Name)
	require.Len(t, loaded.Sequences, 1)
	assert.Equal(t, "Opening", loaded.Sequences[0].Title)
	assert.Equal(t, "Project_Skyline_Seq01_still.png", loaded.Sequences[0].Assets[library.KindStill])
	assert.False(t, loaded.UpdatedAt.IsZero())

	// No stray temp file once the rename has landed.
	_, err = fsys.Stat(stateFile + ".tmp")
	require.Error(t, err)
}

func TestEnsureSequence(t *testing.T) {
	p := New("Skyline")

	a := p.EnsureSequence("01")
	a.Script = "INT. ROOFTOP - NIGHT"

	b := p.EnsureSequence("01")
	assert.Equal(t, "INT. ROOFTOP - NIGHT", b.Script)
	assert.Len(t, p.Sequences, 1)

	p.EnsureSequence("02")
	assert.Len(t, p.Sequences, 2)
	assert.Nil(t, p.Sequence("03"))
}

func TestApplyAutofill(t *testing.T) {
	p := New("Skyline")
	seq := p.EnsureSequence("01")
	seq.Prompt = "original prompt"
	seq.Script = "original script"

	p.ApplyAutofill(&library.Autofill{
		SequenceID: "01",
		Fields:     map[string]string{library.KindScript: "rewritten script"},
		Assets:     map[string]string{library.KindClip: "Project_Skyline_Seq01_clip.mp4"},
	})

	// The payload had no prompt, so the prompt survives.
	assert.Equal(t, "original prompt", seq.Prompt)
	assert.Equal(t, "rewritten script", seq.Script)
	assert.Equal(t, "Project_Skyline_Seq01_clip.mp4", seq.Assets[library.KindClip])
}

func TestApplyAutofillCreatesSequence(t *testing.T) {
	p := New("Skyline")

	got := p.ApplyAutofill(&library.Autofill{
		SequenceID: "07",
		Fields:     map[string]string{library.KindPrompt: "harbor at dawn"},
	})

	assert.Equal(t, "07", got.ID)
	assert.Equal(t, "harbor at dawn", got.Prompt)
	assert.Len(t, p.Sequences, 1)
}
