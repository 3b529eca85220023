package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Cyclone1070/terminus/internal/tool"
)

type AddRequest struct {
	Paths []string `json:"paths"`
}

func (r *AddRequest) Validate() error {
	if len(r.Paths) == 0 {
		return ErrPathsRequired
	}
	for _, p := range r.Paths {
		if strings.TrimSpace(p) == "" {
			return ErrPathsRequired
		}
	}
	return nil
}

// Add returns the git_add tool.
func (t *Tools) Add() tool.Tool {
	return tool.New(tool.Descriptor{
		Name:        "git_add",
		Description: "Stage files or directories for the next commit. Use '.' to stage everything that is not ignored.",
		Safety:      tool.SafetyConfirm,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"paths": {
					Type:        tool.TypeArray,
					Description: "Paths relative to the working directory",
					Items:       &tool.Schema{Type: tool.TypeString},
				},
			},
			Required: []string{"paths"},
		},
	}, t.add, tool.WithPreview(t.previewAdd))
}

func (t *Tools) previewAdd(tc tool.Context, req *AddRequest) (tool.Preview, error) {
	return tool.Preview{
		Kind:  tool.PreviewText,
		Title: "Stage changes?",
		Body:  strings.Join(req.Paths, "\n"),
	}, nil
}

func (t *Tools) add(ctx context.Context, tc tool.Context, req *AddRequest) (string, error) {
	r, err := open(tc.WorkingDir())
	if err != nil {
		return "", err
	}

	before, err := r.wt.Status()
	if err != nil {
		return "", err
	}

	for _, p := range req.Paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		abs := tc.Resolve(p)
		rel, err := r.rel(abs)
		if err != nil {
			return "", err
		}
		// A missing path is only valid as a tracked deletion.
		if _, err := os.Lstat(abs); errors.Is(err, os.ErrNotExist) {
			if _, tracked := before[rel]; !tracked {
				return "", fmt.Errorf("%w: %s", ErrPathMissing, p)
			}
		}
		if _, err := r.wt.Add(rel); err != nil {
			return "", fmt.Errorf("stage %s: %w", p, err)
		}
	}

	status, err := r.wt.Status()
	if err != nil {
		return "", err
	}
	paths := staged(status)
	if len(paths) == 0 {
		return "Nothing staged", nil
	}
	return fmt.Sprintf("Staged for commit:\n%s", strings.Join(paths, "\n")), nil
}
