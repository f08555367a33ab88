package library

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/sync/errgroup"
)

// Autofill is what a successful drop resolution hands the UI: text content
// for the editable fields plus path references for media assets.
type Autofill struct {
	SequenceID string            `json:"sequenceId"`
	Project    string            `json:"project,omitempty"`
	Fields     map[string]string `json:"fields"`
	Assets     map[string]string `json:"assets"`
}

// Resolver turns one dropped filename into an Autofill payload. It shares
// the scanner's recognizer and reads companion files through the same
// workspace filesystem the scanner walked.
type Resolver struct {
	fs    billy.Filesystem
	rec   Recognizer
	store *Store
}

// NewResolver creates a resolver bound to a workspace filesystem, the
// shared recognizer, and the library store.
func NewResolver(fsys billy.Filesystem, rec Recognizer, store *Store) *Resolver {
	return &Resolver{fs: fsys, rec: rec, store: store}
}

// Resolve matches a dropped filename against the library. A filename the
// recognizer rejects, or a sequence ID the library does not know, resolves
// to (nil, nil): the drop is a no-op, not an error. Companion text assets
// are read concurrently, each into its own destination; the first read
// error fails the whole resolution. A kind the entry lacks simply leaves
// its field unset.
func (r *Resolver) Resolve(ctx context.Context, filename string) (*Autofill, error) {
	m, ok := r.rec.Recognize(filepath.Base(filename))
	if !ok {
		return nil, nil
	}
	entry, ok := r.store.Get(m.SequenceID)
	if !ok {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	af := &Autofill{
		SequenceID: entry.ID,
		Project:    entry.Project,
		Fields:     make(map[string]string),
		Assets:     make(map[string]string),
	}

	type textRead struct {
		kind    string
		path    string
		content string
	}
	var reads []*textRead
	for kind, ref := range entry.Assets {
		if kind == KindPrompt || kind == KindScript {
			reads = append(reads, &textRead{kind: kind, path: ref.Path})
			continue
		}
		af.Assets[kind] = ref.Path
	}

	var g errgroup.Group
	for _, tr := range reads {
		g.Go(func() error {
			data, err := util.ReadFile(r.fs, tr.path)
			if err != nil {
				return fmt.Errorf("reading %s asset %s: %w", tr.kind, tr.path, err)
			}
			tr.content = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, tr := range reads {
		af.Fields[tr.kind] = tr.content
	}
	return af, nil
}
