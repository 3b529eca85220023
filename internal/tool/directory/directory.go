// Package directory implements the list_directory, get_current_directory and change_directory tools.
package directory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Cyclone1070/terminus/internal/config"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/fsutil"
	"github.com/dustin/go-humanize"
)

var (
	ErrNotADirectory = errors.New("path is not a directory")
	ErrPathMissing   = errors.New("path does not exist")
	ErrInvalidLimit  = errors.New("limit must be >= 0")
	ErrInvalidDepth  = errors.New("max_depth must be >= 0")
)

// fileSystem is the disk access the directory tools need.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
}

// Tools builds the directory tools.
type Tools struct {
	fs           fileSystem
	defaultLimit int
	maxLimit     int
}

// New creates the directory tool set.
func New(fs fileSystem, cfg *config.Config) *Tools {
	return &Tools{
		fs:           fs,
		defaultLimit: cfg.Tools.DefaultListDirectoryLimit,
		maxLimit:     cfg.Tools.MaxListDirectoryLimit,
	}
}

// All returns every directory tool.
func (t *Tools) All() []tool.Tool {
	return []tool.Tool{t.ListDirectory(), t.GetCurrentDirectory(), t.ChangeDirectory()}
}

type ListDirectoryRequest struct {
	Path           string `json:"path,omitempty"`
	MaxDepth       int    `json:"max_depth,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	IncludeIgnored bool   `json:"include_ignored,omitempty"`
}

func (r *ListDirectoryRequest) Validate() error {
	if r.Limit < 0 {
		return ErrInvalidLimit
	}
	if r.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	return nil
}

// ListDirectory returns the list_directory tool.
func (t *Tools) ListDirectory() tool.Tool {
	return tool.New(tool.Descriptor{
		Name:        "list_directory",
		Description: "List files and directories. Directories end with '/'. Entries ignored by .gitignore are skipped unless include_ignored is set.",
		Safety:      tool.SafetySafe,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":            {Type: tool.TypeString, Description: "Directory to list, defaults to the working directory"},
				"max_depth":       {Type: tool.TypeInteger, Description: "How many levels below path to descend, 0 lists only direct children"},
				"limit":           {Type: tool.TypeInteger, Description: "Maximum number of entries"},
				"include_ignored": {Type: tool.TypeBoolean, Description: "Include gitignored entries"},
			},
		},
	}, t.listDirectory)
}

type entry struct {
	rel   string
	isDir bool
	size  int64
}

func (t *Tools) listDirectory(ctx context.Context, tc tool.Context, req *ListDirectoryRequest) (string, error) {
	path := req.Path
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

	limit := t.defaultLimit
	if req.Limit > 0 {
		limit = min(req.Limit, t.maxLimit)
	}

	var ignore *fsutil.IgnoreMatcher
	if !req.IncludeIgnored {
		// A broken .gitignore only disables filtering.
		ignore, _ = fsutil.NewIgnoreMatcher(abs)
	}

	var entries []entry
	truncated := false
	var walk func(dir, rel string, depth int) error
	walk = func(dir, rel string, depth int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		items, err := t.fs.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, item := range items {
			childRel := filepath.Join(rel, item.Name())
			if ignore.ShouldIgnore(childRel, item.IsDir()) {
				continue
			}
			if len(entries) >= limit {
				truncated = true
				return nil
			}
			e := entry{rel: childRel, isDir: item.IsDir()}
			if fi, err := item.Info(); err == nil && !item.IsDir() {
				e.size = fi.Size()
			}
			entries = append(entries, e)
			if item.IsDir() && depth < req.MaxDepth {
				if err := walk(filepath.Join(dir, item.Name()), childRel, depth+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(abs, "", 0); err != nil {
		return "", err
	}

	if len(entries) == 0 {
		return fmt.Sprintf("%s is empty", abs), nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", abs)
	for _, e := range entries {
		if e.isDir {
			fmt.Fprintf(&b, "%s/\n", filepath.ToSlash(e.rel))
		} else {
			fmt.Fprintf(&b, "%s (%s)\n", filepath.ToSlash(e.rel), humanize.IBytes(uint64(e.size)))
		}
	}
	if truncated {
		fmt.Fprintf(&b, "... truncated at %d entries\n", limit)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

type GetCurrentDirectoryRequest struct{}

// GetCurrentDirectory returns the get_current_directory tool.
func (t *Tools) GetCurrentDirectory() tool.Tool {
	return tool.New(tool.Descriptor{
		Name:        "get_current_directory",
		Description: "Return the session's current working directory.",
		Safety:      tool.SafetySafe,
	}, func(ctx context.Context, tc tool.Context, req *GetCurrentDirectoryRequest) (string, error) {
		return tc.WorkingDir(), nil
	})
}

type ChangeDirectoryRequest struct {
	Path string `json:"path"`
}

func (r *ChangeDirectoryRequest) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return errors.New("path is required")
	}
	return nil
}

// ChangeDirectory returns the change_directory tool. Later relative paths resolve against the new directory.
func (t *Tools) ChangeDirectory() tool.Tool {
	return tool.New(tool.Descriptor{
		Name:        "change_directory",
		Description: "Change the session's working directory. Relative paths in later tool calls resolve against it.",
		Safety:      tool.SafetySafe,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path": {Type: tool.TypeString, Description: "Directory to move to, absolute or relative"},
			},
			Required: []string{"path"},
		},
	}, func(ctx context.Context, tc tool.Context, req *ChangeDirectoryRequest) (string, error) {
		if err := tc.ChangeDir(req.Path); err != nil {
			return "", err
		}
		return fmt.Sprintf("Changed directory to %s", tc.WorkingDir()), nil
	})
}
