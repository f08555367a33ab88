package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DankHaloRing/Vibe-Studio1/internal/config"
	"github.com/DankHaloRing/Vibe-Studio1/internal/library"
	"github.com/DankHaloRing/Vibe-Studio1/internal/tmux"
	"github.com/DankHaloRing/Vibe-Studio1/internal/ui"
	"github.com/DankHaloRing/Vibe-Studio1/internal/workspace"
)

var openCmd = &cobra.Command{
	Use:   "open [id]",
	Short: "Open a sequence's tmux workspace (no id: pick interactively)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}

	ws, store, err := env.scanned(cmd.Context())
	if err != nil {
		return err
	}

	if len(args) == 0 {
		picked, err := ui.SelectSequence(store.Entries())
		if err != nil {
			return err
		}
		if picked == nil {
			return nil // cancelled
		}
		return openSequence(cmd, env.cfg, ws, *picked)
	}

	entry, ok := store.Get(args[0])
	if !ok {
		return fmt.Errorf("sequence %s not in library", args[0])
	}

	return openSequence(cmd, env.cfg, ws, entry)
}

// openSequence drops the user into the sequence's tmux workspace. Outside
// tmux (or without a server) it prints the asset paths instead, so the
// command stays useful over ssh or in scripts.
func openSequence(cmd *cobra.Command, cfg *config.Config, ws *workspace.Workspace, entry library.SequenceEntry) error {
	if !tmux.IsInsideTmux() {
		return printAssets(cmd, ws, entry)
	}

	mgr, err := tmux.New()
	if err != nil {
		return printAssets(cmd, ws, entry)
	}

	sessionName := tmux.WorkspaceSessionName(ws.Path())
	if !mgr.SessionExists(sessionName) {
		if err := mgr.CreateWorkspaceSession(sessionName, ws.Path(), cfg.Tmux.Windows); err != nil {
			return fmt.Errorf("creating tmux session: %w", err)
		}
	}
	if err := mgr.SwitchToSession(sessionName); err != nil {
		return fmt.Errorf("switching to session: %w", err)
	}

	// Open the sequence's script in $EDITOR when both exist.
	if script, ok := entry.Assets[library.KindScript]; ok {
		if editor := os.Getenv("EDITOR"); editor != "" {
			editCmd := fmt.Sprintf("cd %q && %s %q; exec $SHELL", ws.Path(), editor, script.Path)
			if err := mgr.RespawnWindow(sessionName, "script", editCmd); err != nil {
				return fmt.Errorf("opening script window: %w", err)
			}
			if err := mgr.SelectWindow(sessionName, "script"); err != nil {
				return fmt.Errorf("selecting script window: %w", err)
			}
		}
	}
	return nil
}

func printAssets(cmd *cobra.Command, ws *workspace.Workspace, entry library.SequenceEntry) error {
	printf(cmd, "Sequence %s", entry.ID)
	if entry.Project != "" {
		printf(cmd, " (project %s)", entry.Project)
	}
	printf(cmd, "\n")
	for _, kind := range entry.Kinds() {
		printf(cmd, "  %-10s %s\n", kind, ws.FS().Join(ws.Path(), entry.Assets[kind].Path))
	}
	return nil
}
