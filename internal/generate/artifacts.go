package generate

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/DankHaloRing/Vibe-Studio1/internal/library"
)

// Saver writes generated artifacts into the workspace under the canonical
// naming convention and surfaces them in the library without waiting for
// a rescan. It shares the recognizer with the scanner and resolver, so an
// attached entry is exactly what the next scan would index.
type Saver struct {
	fs    billy.Filesystem
	rec   library.Recognizer
	store *library.Store
}

// NewSaver creates a saver bound to a workspace filesystem and the shared
// library state.
func NewSaver(fsys billy.Filesystem, rec library.Recognizer, store *library.Store) *Saver {
	return &Saver{fs: fsys, rec: rec, store: store}
}

// defaultExts covers services that return bytes no sniffer recognizes.
var defaultExts = map[string]string{
	library.KindStill:     "png",
	library.KindVoiceover: "mp3",
	library.KindClip:      "mp4",
}

// SaveText writes prompt or script text for a sequence and returns the
// workspace path it landed at.
func (sv *Saver) SaveText(projectName, sequenceID, kind, text string) (string, error) {
	return sv.write(projectName, sequenceID, kind, "txt", []byte(text))
}

// SaveMedia writes artifact bytes for a sequence, sniffing the extension
// from the content.
func (sv *Saver) SaveMedia(projectName, sequenceID, kind string, data []byte) (string, error) {
	ext := mimetype.Detect(data).Extension()
	if ext == "" {
		ext = defaultExts[kind]
	}
	return sv.write(projectName, sequenceID, kind, ext, data)
}

func (sv *Saver) write(projectName, sequenceID, kind, ext string, data []byte) (string, error) {
	name := library.FileName(projectName, sequenceID, kind, ext)
	if err := util.WriteFile(sv.fs, name, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}

	if m, ok := sv.rec.Recognize(name); ok {
		sv.store.Attach(m, name)
	}
	return name, nil
}
