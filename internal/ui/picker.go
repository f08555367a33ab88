package ui

import (
	"fmt"
	"strings"

	"github.com/koki-develop/go-fzf"

	"github.com/DankHaloRing/Vibe-Studio1/internal/library"
)

// SelectSequence presents an interactive fuzzy finder over the library
func SelectSequence(entries []library.SequenceEntry) (*library.SequenceEntry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no sequences in library")
	}

	f, err := fzf.New(
		fzf.WithPrompt("Sequences > "),
		fzf.WithInputPosition(fzf.InputPositionTop),
		fzf.WithLimit(1),
	)
	if err != nil {
		return nil, err
	}

	idxs, err := f.Find(
		entries,
		func(i int) string {
			return formatEntryLine(entries[i])
		},
		fzf.WithPreviewWindow(func(i, w, h int) string {
			if i < 0 || i >= len(entries) {
				return ""
			}
			return formatPreview(entries[i])
		}),
	)
	if err != nil {
		return nil, err
	}
	if len(idxs) == 0 {
		return nil, nil // User cancelled
	}

	return &entries[idxs[0]], nil
}

func formatEntryLine(e library.SequenceEntry) string {
	project := e.Project
	if project == "" {
		project = "(no project)"
	}
	return fmt.Sprintf("Seq %s  %-20s  %s",
		e.ID,
		project,
		strings.Join(e.Kinds(), ", "))
}

func formatPreview(e library.SequenceEntry) string {
	var b strings.Builder

	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	b.WriteString(fmt.Sprintf("Sequence: %s\n", e.ID))
	if e.Project != "" {
		b.WriteString(fmt.Sprintf("Project:  %s\n", e.Project))
	}
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	b.WriteString(fmt.Sprintf("Assets: %d\n", len(e.Assets)))
	for _, kind := range e.Kinds() {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", kind, e.Assets[kind].Path))
	}

	return b.String()
}
