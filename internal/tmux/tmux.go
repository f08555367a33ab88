package tmux

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/GianlucaP106/gotmux/gotmux"

	"github.com/DankHaloRing/Vibe-Studio1/internal/config"
)

// Manager handles tmux operations
type Manager struct {
	tmux *gotmux.Tmux
}

// New creates a tmux manager
func New() (*Manager, error) {
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, err
	}
	return &Manager{tmux: t}, nil
}

// IsInsideTmux checks if we're running inside tmux
func IsInsideTmux() bool {
	return os.Getenv("TMUX") != ""
}

// SessionExists checks if a tmux session exists
func (m *Manager) SessionExists(name string) bool {
	return m.tmux.HasSession(name)
}

// CreateWorkspaceSession creates a session rooted at the workspace
// directory with the configured production windows. The first configured
// window takes over the session's initial window; windows carrying a
// command get it run in place.
func (m *Manager) CreateWorkspaceSession(name, workspacePath string, windows []config.Window) error {
	if len(windows) == 0 {
		windows = []config.Window{{Name: "script"}}
	}

	sess, err := m.tmux.NewSession(&gotmux.SessionOptions{
		Name:           name,
		StartDirectory: workspacePath,
	})
	if err != nil {
		return err
	}

	existing, err := sess.ListWindows()
	if err == nil && len(existing) > 0 {
		existing[0].Rename(windows[0].Name)
	}

	for _, win := range windows[1:] {
		_, err := sess.NewWindow(&gotmux.NewWindowOptions{
			WindowName:     win.Name,
			StartDirectory: workspacePath,
		})
		if err != nil {
			return err
		}
	}

	for _, win := range windows {
		if win.Command == "" {
			continue
		}
		if err := m.RespawnWindow(name, win.Name, win.Command); err != nil {
			return err
		}
	}

	if w, err := sess.GetWindowByName(windows[0].Name); err == nil {
		w.Select()
	}
	return nil
}

// SwitchToSession switches the client to a session
func (m *Manager) SwitchToSession(name string) error {
	return m.tmux.SwitchClient(&gotmux.SwitchClientOptions{
		TargetSession: name,
	})
}

// SelectWindow focuses a window in a session
func (m *Manager) SelectWindow(sessionName, windowName string) error {
	sess, err := m.tmux.GetSessionByName(sessionName)
	if err != nil {
		return err
	}
	w, err := sess.GetWindowByName(windowName)
	if err != nil {
		return fmt.Errorf("window not found: %s", windowName)
	}
	return w.Select()
}

// RespawnWindow kills the current process in a window and runs a new command
// This runs the command directly without visible typing
func (m *Manager) RespawnWindow(sessionName, windowName, command string) error {
	target := fmt.Sprintf("%s:%s", sessionName, windowName)
	_, err := m.tmux.Command("respawn-pane", "-k", "-t", target, command)
	return err
}

// WorkspaceSessionName converts a workspace path to a session name
func WorkspaceSessionName(workspacePath string) string {
	name := filepath.Base(workspacePath)
	if name == "" || name == "." {
		return "vibe-studio"
	}
	return name
}
