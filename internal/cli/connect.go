package cli

import (
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect <dir>",
	Short: "Connect a workspace directory and remember it",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnect,
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the stored workspace reference",
	Args:  cobra.NoArgs,
	RunE:  runDisconnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}

	ws, err := env.mgr.Connect(args[0])
	if err != nil {
		return err
	}

	_, store, err := env.scanned(cmd.Context())
	if err != nil {
		return err
	}

	printf(cmd, "Connected %s (%d sequences)\n", ws.Path(), store.Size())
	return nil
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}

	if err := env.mgr.Disconnect(); err != nil {
		return err
	}
	printf(cmd, "Workspace reference removed.\n")
	return nil
}
