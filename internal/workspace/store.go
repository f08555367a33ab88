package workspace

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

const stateFileName = "state.gob"

// WorkspaceKey is the fixed key the connected directory reference is
// persisted under.
const WorkspaceKey = "workspace.dir"

// Store is a minimal durable key-value file. The app keeps exactly one
// value in it, the workspace directory reference, but the surface stays a
// plain Get/Set/Delete so nothing outside this package depends on the
// encoding.
type Store struct {
	path   string
	mu     sync.RWMutex
	values map[string]string
}

// NewStore opens the state file in the user's state directory.
func NewStore() (*Store, error) {
	path, err := xdg.StateFile(filepath.Join("vibe-studio", stateFileName))
	if err != nil {
		return nil, err
	}
	return OpenStore(path), nil
}

// OpenStore opens a state file at an explicit path, loading whatever it
// already holds. A missing or unreadable file starts empty.
func OpenStore(path string) *Store {
	s := &Store{
		path:   path,
		values: make(map[string]string),
	}
	s.load()
	return s
}

func (s *Store) load() {
	f, err := os.Open(s.path)
	if err != nil {
		return
	}
	defer f.Close()
	gob.NewDecoder(f).Decode(&s.values)
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(s.values)
}

// Get retrieves a stored value.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value and persists the file immediately.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.save()
}

// Delete removes a value and persists the file immediately.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return s.save()
}
