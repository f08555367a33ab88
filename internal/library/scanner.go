package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Scanner builds a Library by walking a workspace filesystem and
// classifying every filename through the shared recognizer.
type Scanner struct {
	fs  billy.Filesystem
	rec Recognizer
}

// NewScanner creates a scanner over a workspace filesystem. The recognizer
// must be the same value the drop resolver uses.
func NewScanner(fsys billy.Filesystem, rec Recognizer) *Scanner {
	return &Scanner{fs: fsys, rec: rec}
}

// Scan walks the workspace and returns a fresh Library meant to replace
// the previous one wholesale. Filenames the recognizer rejects are skipped
// silently; any enumeration error aborts the scan so the caller keeps its
// previous library. The walk visits names in sorted order, which makes
// duplicate-kind resolution deterministic: the lexically last file wins.
func (s *Scanner) Scan(ctx context.Context) (Library, error) {
	lib := make(Library)

	err := util.Walk(s.fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if strings.HasPrefix(info.Name(), ".") && path != "/" {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		m, ok := s.rec.Recognize(info.Name())
		if !ok {
			return nil
		}
		lib.Insert(m, strings.TrimPrefix(path, "/"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning workspace: %w", err)
	}

	return lib, nil
}
