package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/DankHaloRing/Vibe-Studio1/internal/config"
	"github.com/DankHaloRing/Vibe-Studio1/internal/server"
	"github.com/DankHaloRing/Vibe-Studio1/internal/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for the production UI",
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to config server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	state, err := workspace.NewStore()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	srv, err := server.New(cfg, state, logger)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	return srv.Run(addr)
}
