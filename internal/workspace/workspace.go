package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// ErrNotConnected reports that no workspace is connected, or that the
// stored directory reference no longer points at a readable directory.
// Callers surface it as a status, never as a crash.
var ErrNotConnected = errors.New("workspace not connected")

// Workspace is the user-granted project directory, carried as an explicit
// filesystem value so scanners and resolvers never reach for process
// globals.
type Workspace struct {
	path string
	fs   billy.Filesystem
}

// Open validates a directory and wraps it as a workspace. The directory
// must exist and be enumerable.
func Open(path string) (*Workspace, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && err != io.EOF {
		return nil, fmt.Errorf("listing %s: %w", abs, err)
	}

	return &Workspace{path: abs, fs: osfs.New(abs)}, nil
}

// Path returns the absolute directory the workspace is rooted at.
func (w *Workspace) Path() string {
	return w.path
}

// Name returns the directory's base name.
func (w *Workspace) Name() string {
	return filepath.Base(w.path)
}

// FS returns the filesystem capability rooted at the workspace.
func (w *Workspace) FS() billy.Filesystem {
	return w.fs
}

// Manager resolves the durable workspace reference into a live Workspace.
// The reference outlives the process; the directory's validity does not,
// so Current revalidates on every call instead of trusting a cached
// handle.
type Manager struct {
	store *Store
}

// NewManager creates a manager over a state store.
func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

// Connect validates a directory, remembers it, and returns the workspace.
func (m *Manager) Connect(path string) (*Workspace, error) {
	ws, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(WorkspaceKey, ws.Path()); err != nil {
		return nil, fmt.Errorf("persisting workspace reference: %w", err)
	}
	return ws, nil
}

// Disconnect forgets the stored reference.
func (m *Manager) Disconnect() error {
	return m.store.Delete(WorkspaceKey)
}

// Path returns the stored reference without validating it.
func (m *Manager) Path() (string, bool) {
	return m.store.Get(WorkspaceKey)
}

// Current re-resolves the stored reference and revalidates the directory.
// A missing reference or a directory that can no longer be opened both
// come back as ErrNotConnected.
func (m *Manager) Current() (*Workspace, error) {
	path, ok := m.store.Get(WorkspaceKey)
	if !ok {
		return nil, ErrNotConnected
	}
	ws, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return ws, nil
}
