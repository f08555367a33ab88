package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/DankHaloRing/Vibe-Studio1/internal/config"
	"github.com/DankHaloRing/Vibe-Studio1/internal/generate"
	"github.com/DankHaloRing/Vibe-Studio1/internal/library"
	"github.com/DankHaloRing/Vibe-Studio1/internal/project"
	"github.com/DankHaloRing/Vibe-Studio1/internal/workspace"
)

// Server is the HTTP backend for the production UI. It owns the shared
// recognizer, the library store, and the loaded project document; the
// workspace itself is re-resolved through the manager on every use.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	mgr    *workspace.Manager
	rec    library.Recognizer
	store  *library.Store
	gen    *generate.Service

	mu      sync.Mutex
	project *project.Project
}

// New wires a server from the config and the durable state store. If a
// workspace is already connected it is scanned immediately so the UI
// starts populated; a stale reference just logs and starts empty.
func New(cfg *config.Config, state *workspace.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rec, err := library.ForConvention(cfg.Library.Convention)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		mgr:    workspace.NewManager(state),
		rec:    rec,
		store:  library.NewStore(),
		gen:    generate.New(cfg.Generation, logger),
	}
	s.boot()
	return s, nil
}

func (s *Server) boot() {
	ws, err := s.mgr.Current()
	if err != nil {
		if path, ok := s.mgr.Path(); ok {
			s.logger.Warn("stored workspace not reachable", "path", path, "error", err)
		}
		return
	}

	lib, err := library.NewScanner(ws.FS(), s.rec).Scan(context.Background())
	if err != nil {
		s.logger.Warn("initial scan failed", "workspace", ws.Path(), "error", err)
	} else {
		s.store.Replace(lib)
		s.logger.Info("workspace scanned", "workspace", ws.Path(), "sequences", len(lib))
	}

	p, err := project.Load(ws.FS())
	switch {
	case err == nil:
		s.project = p
		s.logger.Info("project loaded", "name", p.Name, "sequences", len(p.Sequences))
	case !errors.Is(err, project.ErrNoProject):
		s.logger.Warn("project file unreadable", "error", err)
	}
}

// Handler returns the routed and logged HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/workspace/connect", s.handleConnect)
	mux.HandleFunc("POST /api/workspace/disconnect", s.handleDisconnect)
	mux.HandleFunc("POST /api/workspace/rescan", s.handleRescan)

	mux.HandleFunc("GET /api/library", s.handleLibrary)
	mux.HandleFunc("GET /api/library/{id}", s.handleLibraryEntry)
	mux.HandleFunc("POST /api/resolve", s.handleResolve)

	mux.HandleFunc("GET /api/project", s.handleGetProject)
	mux.HandleFunc("PUT /api/project", s.handlePutProject)
	mux.HandleFunc("PUT /api/sequences/{id}", s.handlePutSequence)

	mux.HandleFunc("POST /api/project/storyboard", s.handleStoryboard)
	mux.HandleFunc("POST /api/sequences/{id}/script", s.handleGenerateScript)
	mux.HandleFunc("POST /api/sequences/{id}/still", s.handleGenerateStill)
	mux.HandleFunc("POST /api/sequences/{id}/voiceover", s.handleGenerateVoiceover)
	mux.HandleFunc("POST /api/sequences/{id}/clip", s.handleGenerateClip)
	mux.HandleFunc("POST /api/project/produce", s.handleProduce)

	mux.HandleFunc("GET /files/{path...}", s.handleFile)

	return s.logRequests(mux)
}

// Run serves the API until the listener fails.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening", "addr", addr)
	return srv.ListenAndServe()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
