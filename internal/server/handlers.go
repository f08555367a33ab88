package server

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DankHaloRing/Vibe-Studio1/internal/generate"
	"github.com/DankHaloRing/Vibe-Studio1/internal/library"
	"github.com/DankHaloRing/Vibe-Studio1/internal/project"
	"github.com/DankHaloRing/Vibe-Studio1/internal/workspace"
)

type statusResponse struct {
	WorkspacePath string `json:"workspacePath,omitempty"`
	Connected     bool   `json:"connected"`
	LibrarySize   int    `json:"librarySize"`
	ProjectName   string `json:"projectName,omitempty"`
	Sequences     int    `json:"sequences"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{LibrarySize: s.store.Size()}
	if stored, ok := s.mgr.Path(); ok {
		resp.WorkspacePath = stored
	}
	if _, err := s.mgr.Current(); err == nil {
		resp.Connected = true
	}

	s.mu.Lock()
	if s.project != nil {
		resp.ProjectName = s.project.Name
		resp.Sequences = len(s.project.Sequences)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		errorJSON(w, http.StatusBadRequest, "path is required")
		return
	}

	ws, err := s.mgr.Connect(req.Path)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, fmt.Sprintf("connecting workspace: %v", err))
		return
	}

	lib, err := library.NewScanner(ws.FS(), s.rec).Scan(r.Context())
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, fmt.Sprintf("scanning workspace: %v", err))
		return
	}
	s.store.Replace(lib)
	s.logger.Info("workspace connected", "path", ws.Path(), "sequences", len(lib))

	s.mu.Lock()
	p, err := project.Load(ws.FS())
	switch {
	case err == nil:
		s.project = p
	case errors.Is(err, project.ErrNoProject):
		s.project = nil
	default:
		s.logger.Warn("project file unreadable", "error", err)
		s.project = nil
	}
	s.mu.Unlock()

	s.handleStatus(w, r)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.Disconnect(); err != nil {
		errorJSON(w, http.StatusInternalServerError, fmt.Sprintf("forgetting workspace: %v", err))
		return
	}
	s.store.Replace(nil)

	s.mu.Lock()
	s.project = nil
	s.mu.Unlock()

	s.handleStatus(w, r)
}

// handleRescan revalidates the stored reference and rebuilds the library.
// On any failure the previous library stays in place, so a transient error
// never destroys a working session.
func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.currentWorkspace(w)
	if !ok {
		return
	}

	lib, err := library.NewScanner(ws.FS(), s.rec).Scan(r.Context())
	if err != nil {
		s.logger.Warn("rescan failed, keeping previous library", "error", err)
		errorJSON(w, http.StatusServiceUnavailable, fmt.Sprintf("rescan failed: %v", err))
		return
	}
	s.store.Replace(lib)
	s.logger.Info("workspace rescanned", "sequences", len(lib))

	s.handleStatus(w, r)
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": s.store.Entries(),
	})
}

func (s *Server) handleLibraryEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		errorJSON(w, http.StatusNotFound, "sequence not in library")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleResolve runs the drop resolver for a filename the UI received via
// drag-drop. With apply=true the payload is also written into the matching
// project sequence.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename string `json:"filename"`
		Apply    bool   `json:"apply"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	ws, ok := s.currentWorkspace(w)
	if !ok {
		return
	}

	af, err := library.NewResolver(ws.FS(), s.rec, s.store).Resolve(r.Context(), req.Filename)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, fmt.Sprintf("resolving drop: %v", err))
		return
	}
	if af == nil {
		writeJSON(w, http.StatusOK, map[string]any{"matched": false})
		return
	}

	resp := map[string]any{"matched": true, "autofill": af}
	if req.Apply {
		applied := false
		s.mu.Lock()
		if s.project != nil {
			s.project.ApplyAutofill(af)
			if err := project.Save(ws.FS(), s.project); err != nil {
				s.mu.Unlock()
				errorJSON(w, http.StatusInternalServerError, fmt.Sprintf("saving project: %v", err))
				return
			}
			applied = true
		}
		s.mu.Unlock()
		// The UI needs to know when an apply had no project to land in.
		resp["applied"] = applied
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		errorJSON(w, http.StatusNotFound, "no project loaded")
		return
	}
	writeJSON(w, http.StatusOK, s.project)
}

func (s *Server) handlePutProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Concept string `json:"concept"`
		Style   string `json:"style"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		errorJSON(w, http.StatusBadRequest, "name is required")
		return
	}

	ws, ok := s.currentWorkspace(w)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		s.project = project.New(req.Name)
	}
	s.project.Name = req.Name
	s.project.Concept = req.Concept
	s.project.Style = req.Style

	if err := project.Save(ws.FS(), s.project); err != nil {
		errorJSON(w, http.StatusInternalServerError, fmt.Sprintf("saving project: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, s.project)
}

// handlePutSequence updates a sequence's editable fields. Absent fields
// leave the sequence untouched, so the UI can PATCH-style update one box.
func (s *Server) handlePutSequence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  *string `json:"title"`
		Prompt *string `json:"prompt"`
		Script *string `json:"script"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	ws, p, ok := s.loadedProject(w)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seq := p.EnsureSequence(r.PathValue("id"))
	if req.Title != nil {
		seq.Title = *req.Title
	}
	if req.Prompt != nil {
		seq.Prompt = *req.Prompt
	}
	if req.Script != nil {
		seq.Script = *req.Script
	}

	if err := project.Save(ws.FS(), p); err != nil {
		errorJSON(w, http.StatusInternalServerError, fmt.Sprintf("saving project: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, seq)
}

// handleStoryboard drafts sequences from the project concept. Existing
// sequences are replaced wholesale: the storyboard is the first step of a
// production, not an incremental edit.
func (s *Server) handleStoryboard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	ws, p, ok := s.loadedProject(w)
	if !ok {
		return
	}

	s.mu.Lock()
	name, concept, style := p.Name, p.Concept, p.Style
	s.mu.Unlock()

	sb, err := s.gen.DraftStoryboard(r.Context(), name, concept, style, req.Count)
	if err != nil {
		errorJSON(w, http.StatusBadGateway, fmt.Sprintf("drafting storyboard: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p.Sequences = nil
	for i, drafted := range sb.Sequences {
		id := library.FormatSequenceID(i + 1)
		p.Sequences = append(p.Sequences, project.Sequence{
			ID:     id,
			Title:  drafted.Title,
			Prompt: drafted.Prompt,
			Script: drafted.Script,
		})
	}

	if err := project.Save(ws.FS(), p); err != nil {
		errorJSON(w, http.StatusInternalServerError, fmt.Sprintf("saving project: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGenerateScript(w http.ResponseWriter, r *http.Request) {
	ws, p, ok := s.loadedProject(w)
	if !ok {
		return
	}
	id := r.PathValue("id")

	s.mu.Lock()
	seq := p.Sequence(id)
	if seq == nil {
		s.mu.Unlock()
		errorJSON(w, http.StatusNotFound, "unknown sequence")
		return
	}
	req := generate.ScriptRequest{
		ProjectName: p.Name,
		Concept:     p.Concept,
		Style:       p.Style,
		Title:       seq.Title,
		Prompt:      seq.Prompt,
		Current:     seq.Script,
	}
	s.mu.Unlock()

	text, err := s.gen.WriteScript(r.Context(), req)
	if err != nil {
		errorJSON(w, http.StatusBadGateway, fmt.Sprintf("writing script: %v", err))
		return
	}

	saved, err := s.saver(ws).SaveText(req.ProjectName, id, library.KindScript, text)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, fmt.Sprintf("saving script: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seq = p.EnsureSequence(id)
	seq.Script = text
	seq.SetAsset(library.KindScript, saved)
	if err := project.Save(ws.FS(), p); err != nil {
		errorJSON(w, http.StatusInternalServerError, fmt.Sprintf("saving project: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, seq)
}

func (s *Server) handleGenerateStill(w http.ResponseWriter, r *http.Request) {
	s.generateMedia(w, r, library.KindStill, func(r *http.Request, seq project.Sequence) ([]byte, error) {
		return s.gen.RenderStill(r.Context(), seq.Prompt)
	})
}

func (s *Server) handleGenerateVoiceover(w http.ResponseWriter, r *http.Request) {
	s.generateMedia(w, r, library.KindVoiceover, func(r *http.Request, seq project.Sequence) ([]byte, error) {
		return s.gen.SynthesizeVoiceover(r.Context(), seq.Script)
	})
}

func (s *Server) handleGenerateClip(w http.ResponseWriter, r *http.Request) {
	s.generateMedia(w, r, library.KindClip, func(r *http.Request, seq project.Sequence) ([]byte, error) {
		return s.gen.RenderClip(r.Context(), seq.Prompt, seq.Script)
	})
}

// generateMedia runs one media generation for one sequence: call the
// model, save the artifact under the naming convention, link it into the
// library and the project document.
func (s *Server) generateMedia(w http.ResponseWriter, r *http.Request, kind string, render func(*http.Request, project.Sequence) ([]byte, error)) {
	ws, p, ok := s.loadedProject(w)
	if !ok {
		return
	}
	id := r.PathValue("id")

	s.mu.Lock()
	seq := p.Sequence(id)
	if seq == nil {
		s.mu.Unlock()
		errorJSON(w, http.StatusNotFound, "unknown sequence")
		return
	}
	snapshot := *seq
	// Snapshot the project name too: a concurrent project update may
	// rename it while the model call is in flight.
	name := p.Name
	s.mu.Unlock()

	data, err := render(r, snapshot)
	if err != nil {
		errorJSON(w, http.StatusBadGateway, fmt.Sprintf("generating %s: %v", kind, err))
		return
	}

	saved, err := s.saver(ws).SaveMedia(name, id, kind, data)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, fmt.Sprintf("saving %s: %v", kind, err))
		return
	}
	s.logger.Info("artifact saved", "sequence", id, "kind", kind, "path", saved)

	s.mu.Lock()
	defer s.mu.Unlock()
	seq = p.EnsureSequence(id)
	seq.SetAsset(kind, saved)
	if err := project.Save(ws.FS(), p); err != nil {
		errorJSON(w, http.StatusInternalServerError, fmt.Sprintf("saving project: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, seq)
}

type produceResult struct {
	SequenceID string   `json:"sequenceId"`
	Generated  []string `json:"generated"`
	Error      string   `json:"error,omitempty"`
	Elapsed    string   `json:"elapsed"`
}

// handleProduce fills in every missing artifact across the project.
// Sequences run strictly in order; within one sequence the visual leg
// (still then clip) and the audio leg (script then voiceover) run as two
// concurrent chains, since they write distinct destinations. One failed
// sequence is reported and production moves on to the next.
func (s *Server) handleProduce(w http.ResponseWriter, r *http.Request) {
	ws, p, ok := s.loadedProject(w)
	if !ok {
		return
	}

	s.mu.Lock()
	ids := make([]string, 0, len(p.Sequences))
	for _, seq := range p.Sequences {
		ids = append(ids, seq.ID)
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		errorJSON(w, http.StatusConflict, "project has no sequences; draft a storyboard first")
		return
	}

	var results []produceResult
	for _, id := range ids {
		start := time.Now()
		generated, err := s.produceSequence(r, ws, p, id)
		res := produceResult{
			SequenceID: id,
			Generated:  generated,
			Elapsed:    time.Since(start).Round(time.Millisecond).String(),
		}
		if err != nil {
			res.Error = err.Error()
			s.logger.Warn("sequence production failed", "sequence", id, "error", err)
		}
		results = append(results, res)

		if r.Context().Err() != nil {
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) produceSequence(r *http.Request, ws *workspace.Workspace, p *project.Project, id string) ([]string, error) {
	s.mu.Lock()
	seq := p.Sequence(id)
	if seq == nil {
		s.mu.Unlock()
		return nil, errors.New("unknown sequence")
	}
	snapshot := *seq
	name := p.Name

	// The audio leg needs a script; write one up front if it is missing
	// so both legs start from complete inputs.
	if strings.TrimSpace(snapshot.Script) == "" {
		req := generate.ScriptRequest{
			ProjectName: name,
			Concept:     p.Concept,
			Style:       p.Style,
			Title:       snapshot.Title,
			Prompt:      snapshot.Prompt,
		}
		s.mu.Unlock()

		text, err := s.gen.WriteScript(r.Context(), req)
		if err != nil {
			return nil, fmt.Errorf("writing script: %w", err)
		}
		saved, err := s.saver(ws).SaveText(name, id, library.KindScript, text)
		if err != nil {
			return nil, fmt.Errorf("saving script: %w", err)
		}

		s.mu.Lock()
		seq = p.EnsureSequence(id)
		seq.Script = text
		seq.SetAsset(library.KindScript, saved)
		snapshot = *seq
	}
	s.mu.Unlock()

	var (
		generated []string
		stillData []byte
		clipData  []byte
		audioData []byte
		needStill = snapshot.Assets[library.KindStill] == ""
		needClip  = snapshot.Assets[library.KindClip] == ""
		needAudio = snapshot.Assets[library.KindVoiceover] == ""
	)
	group, gctx := errgroup.WithContext(r.Context())

	if needStill || needClip {
		group.Go(func() error {
			if needStill {
				data, err := s.gen.RenderStill(gctx, snapshot.Prompt)
				if err != nil {
					return fmt.Errorf("rendering still: %w", err)
				}
				stillData = data
			}
			if needClip {
				data, err := s.gen.RenderClip(gctx, snapshot.Prompt, snapshot.Script)
				if err != nil {
					return fmt.Errorf("rendering clip: %w", err)
				}
				clipData = data
			}
			return nil
		})
	}
	if needAudio {
		group.Go(func() error {
			data, err := s.gen.SynthesizeVoiceover(gctx, snapshot.Script)
			if err != nil {
				return fmt.Errorf("synthesizing voiceover: %w", err)
			}
			audioData = data
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seq = p.EnsureSequence(id)
	for kind, data := range map[string][]byte{
		library.KindStill:     stillData,
		library.KindClip:      clipData,
		library.KindVoiceover: audioData,
	} {
		if data == nil {
			continue
		}
		saved, err := s.saver(ws).SaveMedia(name, id, kind, data)
		if err != nil {
			return generated, fmt.Errorf("saving %s: %w", kind, err)
		}
		seq.SetAsset(kind, saved)
		generated = append(generated, kind)
	}
	if err := project.Save(ws.FS(), p); err != nil {
		return generated, fmt.Errorf("saving project: %w", err)
	}
	return generated, nil
}

// handleFile serves workspace files read-only so the UI can preview
// stills, clips, and voiceovers in place.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.currentWorkspace(w)
	if !ok {
		return
	}

	rel := path.Clean("/" + r.PathValue("path"))
	f, err := ws.FS().Open(strings.TrimPrefix(rel, "/"))
	if err != nil {
		errorJSON(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	http.ServeContent(w, r, path.Base(rel), time.Time{}, f)
}

// currentWorkspace revalidates the stored reference; a missing or revoked
// workspace is a 409 status, never a crash.
func (s *Server) currentWorkspace(w http.ResponseWriter) (*workspace.Workspace, bool) {
	ws, err := s.mgr.Current()
	if err != nil {
		errorJSON(w, http.StatusConflict, workspace.ErrNotConnected.Error())
		return nil, false
	}
	return ws, true
}

func (s *Server) loadedProject(w http.ResponseWriter) (*workspace.Workspace, *project.Project, bool) {
	ws, ok := s.currentWorkspace(w)
	if !ok {
		return nil, nil, false
	}

	s.mu.Lock()
	p := s.project
	s.mu.Unlock()
	if p == nil {
		errorJSON(w, http.StatusConflict, "no project loaded; create one first")
		return nil, nil, false
	}
	return ws, p, true
}

func (s *Server) saver(ws *workspace.Workspace) *generate.Saver {
	return generate.NewSaver(ws.FS(), s.rec, s.store)
}
