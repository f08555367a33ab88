package library

import (
	"sort"
	"sync"
)

// Store holds the current Library behind a lock so HTTP handlers and the
// CLI can read while a rescan swaps it out.
type Store struct {
	mu  sync.RWMutex
	lib Library
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{lib: make(Library)}
}

// Replace swaps in a freshly scanned library, discarding the old one.
func (s *Store) Replace(lib Library) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lib == nil {
		lib = make(Library)
	}
	s.lib = lib
}

// Get returns a copy of the entry for a sequence ID.
func (s *Store) Get(id string) (SequenceEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.lib[id]
	if !ok {
		return SequenceEntry{}, false
	}
	return copyEntry(entry), true
}

// Attach records a single recognized file without a rescan. Generation
// uses it to surface a just-written artifact immediately.
func (s *Store) Attach(m Match, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lib.Insert(m, path)
}

// Size returns the number of indexed sequences.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lib)
}

// Entries returns copies of all entries sorted by sequence ID.
func (s *Store) Entries() []SequenceEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]SequenceEntry, 0, len(s.lib))
	for _, entry := range s.lib {
		entries = append(entries, copyEntry(entry))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})
	return entries
}

func copyEntry(entry *SequenceEntry) SequenceEntry {
	out := SequenceEntry{
		ID:      entry.ID,
		Project: entry.Project,
		Assets:  make(map[string]AssetRef, len(entry.Assets)),
	}
	for kind, ref := range entry.Assets {
		out.Assets[kind] = ref
	}
	return out
}
