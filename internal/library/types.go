package library

import "sort"

// AssetRef points at one file inside the connected workspace.
// It carries the workspace-relative path only, never an open handle;
// content is re-read through the workspace filesystem when needed.
type AssetRef struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// SequenceEntry groups every workspace file that belongs to one sequence,
// keyed by asset kind ("prompt", "script", "still", "voiceover", "clip", ...).
type SequenceEntry struct {
	ID      string              `json:"id"`
	Project string              `json:"project,omitempty"`
	Assets  map[string]AssetRef `json:"assets"`
}

// Kinds returns the entry's asset kinds in sorted order.
func (e *SequenceEntry) Kinds() []string {
	kinds := make([]string, 0, len(e.Assets))
	for k := range e.Assets {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Library indexes sequence entries by sequence ID.
type Library map[string]*SequenceEntry

// Insert merges one recognized file into the library. Files sharing a
// sequence ID land in the same entry; a repeated kind overwrites, so under
// a sorted directory walk the last match wins.
func (l Library) Insert(m Match, path string) {
	entry, ok := l[m.SequenceID]
	if !ok {
		entry = &SequenceEntry{
			ID:     m.SequenceID,
			Assets: make(map[string]AssetRef),
		}
		l[m.SequenceID] = entry
	}
	if m.Project != "" {
		entry.Project = m.Project
	}
	entry.Assets[m.Kind] = AssetRef{Kind: m.Kind, Path: path}
}
