package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"

	"github.com/DankHaloRing/Vibe-Studio1/internal/library"
)

// The project file lives in a dot-directory so the scanner never indexes
// it as footage.
const (
	stateDir  = ".vibestudio"
	stateFile = ".vibestudio/project.json"
)

// ErrNoProject reports a workspace that has no project file yet.
var ErrNoProject = errors.New("no project file in workspace")

// Sequence is one storyboard beat: the editable prompt and script text
// plus workspace paths for its generated media.
type Sequence struct {
	ID     string            `json:"id"`
	Title  string            `json:"title,omitempty"`
	Prompt string            `json:"prompt,omitempty"`
	Script string            `json:"script,omitempty"`
	Assets map[string]string `json:"assets,omitempty"`
}

// Project is the document the production UI edits.
type Project struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Concept   string     `json:"concept,omitempty"`
	Style     string     `json:"style,omitempty"`
	Sequences []Sequence `json:"sequences"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// New creates a named project with a fresh ID.
func New(name string) *Project {
	return &Project{
		ID:        uuid.NewString(),
		Name:      name,
		UpdatedAt: time.Now().UTC(),
	}
}

// Sequence returns the sequence with the given ID, or nil.
func (p *Project) Sequence(id string) *Sequence {
	for i := range p.Sequences {
		if p.Sequences[i].ID == id {
			return &p.Sequences[i]
		}
	}
	return nil
}

// EnsureSequence returns the sequence with the given ID, appending an
// empty one if the project does not list it yet.
func (p *Project) EnsureSequence(id string) *Sequence {
	if seq := p.Sequence(id); seq != nil {
		return seq
	}
	p.Sequences = append(p.Sequences, Sequence{ID: id})
	return &p.Sequences[len(p.Sequences)-1]
}

// ApplyAutofill writes a drop resolution into the matching sequence.
// Fields the payload lacks leave the sequence untouched.
func (p *Project) ApplyAutofill(af *library.Autofill) *Sequence {
	seq := p.EnsureSequence(af.SequenceID)
	if v, ok := af.Fields[library.KindPrompt]; ok {
		seq.Prompt = v
	}
	if v, ok := af.Fields[library.KindScript]; ok {
		seq.Script = v
	}
	for kind, path := range af.Assets {
		seq.SetAsset(kind, path)
	}
	return seq
}

// SetAsset records a workspace path for one of the sequence's media kinds.
func (s *Sequence) SetAsset(kind, path string) {
	if s.Assets == nil {
		s.Assets = make(map[string]string)
	}
	s.Assets[kind] = path
}

// Load reads the project file from a workspace.
func Load(fsys billy.Filesystem) (*Project, error) {
	data, err := util.ReadFile(fsys, stateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoProject
		}
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding project file: %w", err)
	}
	return &p, nil
}

// Save writes the project file atomically: the document lands in a temp
// file first and is renamed over the old one, so a crash mid-write never
// leaves a torn file.
func Save(fsys billy.Filesystem, p *Project) error {
	p.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}

	if err := fsys.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	tmp := stateFile + ".tmp"
	if err := util.WriteFile(fsys, tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing project file: %w", err)
	}
	if err := fsys.Rename(tmp, stateFile); err != nil {
		return fmt.Errorf("replacing project file: %w", err)
	}
	return nil
}
