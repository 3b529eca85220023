// Package search implements the find and grep tools.
package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Cyclone1070/terminus/internal/config"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/fsutil"
	"github.com/Cyclone1070/terminus/internal/tool/paginationutil"
)

var (
	ErrPatternRequired = errors.New("pattern is required")
	ErrInvalidPattern  = errors.New("invalid pattern")
	ErrInvalidLimit    = errors.New("limit must be >= 0")
	ErrInvalidOffset   = errors.New("offset must be >= 0")
	ErrNotADirectory   = errors.New("path is not a directory")
	ErrPathMissing     = errors.New("path does not exist")
)

// fileSystem is the disk access the search tools need.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	ReadFile(path string) ([]byte, error)
}

// Tools builds the search tools.
type Tools struct {
	fs               fileSystem
	maxFileSize      int64
	maxLineLength    int
	defaultFindLimit int
	maxFindLimit     int
	defaultGrepLimit int
	maxGrepLimit     int
}

// New creates the search tool set.
func New(fs fileSystem, cfg *config.Config) *Tools {
	return &Tools{
		fs:               fs,
		maxFileSize:      cfg.Tools.MaxFileSize,
		maxLineLength:    cfg.Tools.MaxLineLength,
		defaultFindLimit: cfg.Tools.DefaultFindFileLimit,
		maxFindLimit:     cfg.Tools.MaxFindFileLimit,
		defaultGrepLimit: cfg.Tools.DefaultSearchContentLimit,
		maxGrepLimit:     cfg.Tools.MaxSearchContentLimit,
	}
}

// All returns every search tool.
func (t *Tools) All() []tool.Tool {
	return []tool.Tool{t.Find(), t.Grep()}
}

// file is a regular file found during a walk, relative to the search root.
type file struct {
	abs string
	rel string
}

// searchRoot resolves and checks the directory a search starts from.
func (t *Tools) searchRoot(tc tool.Context, path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs := tc.Resolve(path)
	info, err := t.fs.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrPathMissing, abs)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, abs)
	}
	return abs, nil
}

// walk visits every regular file below root in lexical order until visit returns false.
func (t *Tools) walk(ctx context.Context, root string, includeIgnored bool, visit func(f file) (bool, error)) error {
	var ignore *fsutil.IgnoreMatcher
	if !includeIgnored {
		ignore, _ = fsutil.NewIgnoreMatcher(root)
	}

	var rec func(dir, rel string) (bool, error)
	rec = func(dir, rel string) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		items, err := t.fs.ReadDir(dir)
		if err != nil {
			return false, err
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Name() < items[j].Name() })
		for _, item := range items {
			childRel := filepath.Join(rel, item.Name())
			if ignore.ShouldIgnore(childRel, item.IsDir()) {
				continue
			}
			childAbs := filepath.Join(dir, item.Name())
			if item.IsDir() {
				more, err := rec(childAbs, childRel)
				if err != nil || !more {
					return more, err
				}
				continue
			}
			if !item.Type().IsRegular() {
				continue
			}
			more, err := visit(file{abs: childAbs, rel: filepath.ToSlash(childRel)})
			if err != nil || !more {
				return more, err
			}
		}
		return true, nil
	}
	_, err := rec(root, "")
	return err
}

func clampLimit(requested, def, max int) int {
	if requested <= 0 {
		return def
	}
	return min(requested, max)
}

func moreNote(page paginationutil.Page, noun string) string {
	if !page.More {
		return ""
	}
	return fmt.Sprintf("\n... more %s, continue with offset %d", noun, page.Next())
}
