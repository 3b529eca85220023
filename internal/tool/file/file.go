// Package file implements the read_file, write_file and update_file tools.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/terminus/internal/config"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/pathutil"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// fileSystem is the disk access the file tools need.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	ReadFileRange(path string, offset, limit int64) ([]byte, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
	EnsureDirs(path string) error
}

// Tools builds the file tools over one filesystem.
type Tools struct {
	fs          fileSystem
	maxFileSize int64
}

// New creates the file tool set.
func New(fs fileSystem, cfg *config.Config) *Tools {
	return &Tools{fs: fs, maxFileSize: cfg.Tools.MaxFileSize}
}

// All returns every file tool.
func (t *Tools) All() []tool.Tool {
	return []tool.Tool{t.ReadFile(), t.WriteFile(), t.UpdateFile()}
}

// confirmOutside asks before touching a path outside the working directory.
// Always-allow overrides do not cover these writes; disabled confirmation does.
func confirmOutside(ctx context.Context, tc tool.Context, action, abs string) error {
	if pathutil.Within(tc.WorkingDir(), abs) {
		return nil
	}
	decision, err := tc.ConfirmRequest(ctx, tool.Preview{
		Kind:  tool.PreviewText,
		Title: fmt.Sprintf("%s outside the working directory?", action),
		Body:  abs,
	})
	if err != nil {
		return err
	}
	if !decision.Approved() {
		return fmt.Errorf("%w: %s", ErrOutsideDenied, abs)
	}
	return nil
}

// unifiedDiff renders a git-style diff for previews.
func unifiedDiff(name, before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        diffLines(before),
		B:        diffLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return after
	}
	return diff
}

func diffLines(s string) []string {
	if s == "" {
		return nil
	}
	return difflib.SplitLines(s)
}

// lineStats counts added and removed lines between two versions.
func lineStats(before, after string) (added, removed int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		if !strings.HasSuffix(d.Text, "\n") && d.Text != "" {
			n++
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		}
	}
	return added, removed
}

func displayPath(tc tool.Context, abs string) string {
	if rel, err := filepath.Rel(tc.WorkingDir(), abs); err == nil && pathutil.Within(tc.WorkingDir(), abs) {
		return rel
	}
	return abs
}
