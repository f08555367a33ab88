package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Revalidate the workspace and rebuild the library",
	Args:  cobra.NoArgs,
	RunE:  runScan,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print library entries as id|project|kinds (for scripting)",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(listCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}

	ws, store, err := env.scanned(cmd.Context())
	if err != nil {
		return err
	}

	printf(cmd, "%s: %d sequences\n", ws.Path(), store.Size())
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}

	_, store, err := env.scanned(cmd.Context())
	if err != nil {
		return err
	}

	for _, entry := range store.Entries() {
		printf(cmd, "%s|%s|%s\n",
			entry.ID,
			entry.Project,
			strings.Join(entry.Kinds(), ","))
	}
	return nil
}
