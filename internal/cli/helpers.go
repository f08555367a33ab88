package cli

import (
	"context"
	"fmt"

	"github.com/DankHaloRing/Vibe-Studio1/internal/config"
	"github.com/DankHaloRing/Vibe-Studio1/internal/library"
	"github.com/DankHaloRing/Vibe-Studio1/internal/workspace"
)

// env bundles what every command needs: the config, the durable state
// store, the workspace manager, and the recognizer both the scanner and
// the resolver share.
type env struct {
	cfg *config.Config
	mgr *workspace.Manager
	rec library.Recognizer
}

func openEnv() (*env, error) {
	cfg := config.Load()

	state, err := workspace.NewStore()
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	rec, err := library.ForConvention(cfg.Library.Convention)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg: cfg,
		mgr: workspace.NewManager(state),
		rec: rec,
	}, nil
}

// scanned revalidates the stored workspace reference and runs a full
// scan, returning the workspace and a populated store.
func (e *env) scanned(ctx context.Context) (*workspace.Workspace, *library.Store, error) {
	ws, err := e.mgr.Current()
	if err != nil {
		return nil, nil, fmt.Errorf("%w (run: vibe-studio connect <dir>)", workspace.ErrNotConnected)
	}

	lib, err := library.NewScanner(ws.FS(), e.rec).Scan(ctx)
	if err != nil {
		return nil, nil, err
	}

	store := library.NewStore()
	store.Replace(lib)
	return ws, store, nil
}
