package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/DankHaloRing/Vibe-Studio1/internal/library"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <filename>",
	Short: "Print the autofill payload a dropped file would produce",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}

	ws, store, err := env.scanned(cmd.Context())
	if err != nil {
		return err
	}

	af, err := library.NewResolver(ws.FS(), env.rec, store).Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if af == nil {
		printf(cmd, "no match\n")
		return nil
	}

	out, err := json.MarshalIndent(af, "", "  ")
	if err != nil {
		return err
	}
	printf(cmd, "%s\n", out)
	return nil
}
