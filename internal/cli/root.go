package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DankHaloRing/Vibe-Studio1/internal/config"
	"github.com/DankHaloRing/Vibe-Studio1/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "vibe-studio",
	Short: "Production assistant over a local footage workspace",
	Long: `vibe-studio manages a local production workspace: it indexes sequence
assets by their filename convention, autofills prompts and scripts from
dropped files, and sequences generative services to fill in missing
artifacts. Run with no arguments for an interactive sequence picker.

Config file: ` + config.Path(),
	RunE: runRoot,
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}

	ws, store, err := env.scanned(cmd.Context())
	if err != nil {
		return err
	}

	entry, err := ui.SelectSequence(store.Entries())
	if err != nil {
		return err
	}
	if entry == nil {
		return nil // cancelled
	}

	return openSequence(cmd, env.cfg, ws, *entry)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
