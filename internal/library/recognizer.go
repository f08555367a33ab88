package library

import (
	"fmt"
	"regexp"
	"strings"
)

// Asset kinds produced by generation and recognized in filenames.
const (
	KindPrompt    = "prompt"
	KindScript    = "script"
	KindStill     = "still"
	KindVoiceover = "voiceover"
	KindClip      = "clip"
)

// Naming conventions selectable in the config.
const (
	ConventionStrict = "strict"
	ConventionLoose  = "loose"
)

// Match is the result of recognizing a single filename.
type Match struct {
	SequenceID string
	Project    string
	Kind       string
}

// Recognizer extracts sequence metadata from a bare filename. The scanner
// and the drop resolver share one Recognizer value so a dropped file and a
// scanned file can never disagree about what matches.
type Recognizer interface {
	Recognize(filename string) (Match, bool)
}

// ForConvention returns the recognizer for a configured convention name.
// An empty name selects the strict convention.
func ForConvention(name string) (Recognizer, error) {
	switch name {
	case ConventionStrict, "":
		return NewStrictRecognizer(), nil
	case ConventionLoose:
		return NewLooseRecognizer(), nil
	default:
		return nil, fmt.Errorf("unknown naming convention %q", name)
	}
}

// extKinds maps every allowed extension to the kind its media class
// defaults to under the loose convention. The key set doubles as the
// strict convention's extension allowlist.
var extKinds = map[string]string{
	"txt":  KindScript,
	"md":   KindScript,
	"png":  KindStill,
	"jpg":  KindStill,
	"jpeg": KindStill,
	"webp": KindStill,
	"mp3":  KindVoiceover,
	"wav":  KindVoiceover,
	"m4a":  KindVoiceover,
	"mp4":  KindClip,
	"mov":  KindClip,
	"webm": KindClip,
}

var strictPattern = regexp.MustCompile(`(?i)^project_([^_]+)_seq([0-9]+)_([^_.]+)\.([a-z0-9]+)$`)

// StrictRecognizer matches Project_<name>_Seq<digits>_<kind>.<ext>
// filenames, case-insensitively, with the extension restricted to the
// allowed media set.
type StrictRecognizer struct{}

// NewStrictRecognizer creates a strict-convention recognizer.
func NewStrictRecognizer() StrictRecognizer {
	return StrictRecognizer{}
}

// Recognize parses a strict-convention filename.
func (StrictRecognizer) Recognize(filename string) (Match, bool) {
	groups := strictPattern.FindStringSubmatch(filename)
	if groups == nil {
		return Match{}, false
	}
	if _, ok := extKinds[strings.ToLower(groups[4])]; !ok {
		return Match{}, false
	}
	return Match{
		SequenceID: groups[2],
		Project:    groups[1],
		Kind:       strings.ToLower(groups[3]),
	}, true
}

var loosePattern = regexp.MustCompile(`(?i)seq([0-9]+)`)

// LooseRecognizer matches any filename containing Seq<digits> and infers
// the asset kind from the extension's media class. Text files are scripts
// unless the name mentions "prompt".
type LooseRecognizer struct{}

// NewLooseRecognizer creates a loose-convention recognizer.
func NewLooseRecognizer() LooseRecognizer {
	return LooseRecognizer{}
}

// Recognize parses a loose-convention filename.
func (LooseRecognizer) Recognize(filename string) (Match, bool) {
	groups := loosePattern.FindStringSubmatch(filename)
	if groups == nil {
		return Match{}, false
	}

	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return Match{}, false
	}
	kind, ok := extKinds[strings.ToLower(filename[dot+1:])]
	if !ok {
		return Match{}, false
	}
	if kind == KindScript && strings.Contains(strings.ToLower(filename), KindPrompt) {
		kind = KindPrompt
	}

	return Match{SequenceID: groups[1], Kind: kind}, true
}

var tokenCleaner = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// FileName builds the canonical workspace filename for a sequence asset.
// Generated artifacts are written under the strict convention so a rescan
// indexes them again.
func FileName(project, sequenceID, kind, ext string) string {
	if strings.TrimSpace(project) == "" {
		project = "Untitled"
	}
	return fmt.Sprintf("Project_%s_Seq%s_%s.%s",
		cleanToken(project),
		sequenceID,
		strings.ToLower(cleanToken(kind)),
		strings.ToLower(strings.TrimPrefix(ext, ".")))
}

// FormatSequenceID renders a sequence number the way the filename
// convention captures it.
func FormatSequenceID(n int) string {
	return fmt.Sprintf("%02d", n)
}

func cleanToken(s string) string {
	return strings.Trim(tokenCleaner.ReplaceAllString(strings.TrimSpace(s), "-"), "-")
}
