package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/fsutil"
)

// UpdateFileRequest replaces one exact occurrence of Target with Patch.
type UpdateFileRequest struct {
	Path   string `json:"path"`
	Target string `json:"target"`
	Patch  string `json:"patch"`
}

func (r *UpdateFileRequest) Validate() error {
	if r.Path == "" {
		return ErrPathRequired
	}
	if r.Target == "" {
		return ErrTargetRequired
	}
	return nil
}

// UpdateFile returns the update_file tool.
func (t *Tools) UpdateFile() tool.Tool {
	return tool.New(tool.Descriptor{
		Name: "update_file",
		Description: "Update an existing file by replacing one exact occurrence of target with patch. " +
			"Read the file first; target must match exactly once, including whitespace.",
		Safety: tool.SafetyConfirm,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":   {Type: tool.TypeString, Description: "File to update"},
				"target": {Type: tool.TypeString, Description: "Exact text to replace"},
				"patch":  {Type: tool.TypeString, Description: "Replacement text"},
			},
			Required: []string{"path", "target", "patch"},
		},
	}, t.updateFile, tool.WithPreview(t.previewUpdate))
}

// apply loads the file and returns its content before and after the update.
// CRLF files are matched on normalized text and written back with CRLF.
func (t *Tools) apply(abs string, req *UpdateFileRequest) (before, after string, perm os.FileMode, err error) {
	info, err := t.fs.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", 0, fmt.Errorf("%w: %s", ErrFileMissing, abs)
		}
		return "", "", 0, err
	}
	if info.IsDir() {
		return "", "", 0, fmt.Errorf("%w: %s", ErrIsDirectory, abs)
	}
	if info.Size() > t.maxFileSize {
		return "", "", 0, fmt.Errorf("%w: %s", ErrFileTooLarge, abs)
	}

	data, err := t.fs.ReadFile(abs)
	if err != nil {
		return "", "", 0, err
	}
	if fsutil.IsBinary(data) {
		return "", "", 0, fmt.Errorf("%w: %s", ErrBinaryFile, abs)
	}

	raw := string(data)
	crlf := strings.Contains(raw, "\r\n")
	before = strings.ReplaceAll(raw, "\r\n", "\n")
	target := strings.ReplaceAll(req.Target, "\r\n", "\n")
	patch := strings.ReplaceAll(req.Patch, "\r\n", "\n")

	switch n := strings.Count(before, target); {
	case n == 0:
		return "", "", 0, fmt.Errorf("%w in %s", ErrTargetNotFound, abs)
	case n > 1:
		return "", "", 0, fmt.Errorf("%w (%d matches) in %s, include more surrounding lines", ErrTargetAmbiguous, n, abs)
	}

	after = strings.Replace(before, target, patch, 1)
	if crlf {
		before = strings.ReplaceAll(before, "\n", "\r\n")
		after = strings.ReplaceAll(after, "\n", "\r\n")
	}
	return before, after, info.Mode().Perm(), nil
}

func (t *Tools) previewUpdate(tc tool.Context, req *UpdateFileRequest) (tool.Preview, error) {
	abs := tc.Resolve(req.Path)
	before, after, _, err := t.apply(abs, req)
	if err != nil {
		return tool.Preview{}, err
	}
	name := displayPath(tc, abs)
	return tool.Preview{
		Kind:  tool.PreviewDiff,
		Title: fmt.Sprintf("Update %s", name),
		Body:  unifiedDiff(filepath.ToSlash(name), before, after),
	}, nil
}

func (t *Tools) updateFile(ctx context.Context, tc tool.Context, req *UpdateFileRequest) (string, error) {
	abs := tc.Resolve(req.Path)

	before, after, perm, err := t.apply(abs, req)
	if err != nil {
		return "", err
	}
	if int64(len(after)) > t.maxFileSize {
		return "", fmt.Errorf("%w after update: %s", ErrFileTooLarge, abs)
	}

	if err := confirmOutside(ctx, tc, "Update", abs); err != nil {
		return "", err
	}

	if err := t.fs.WriteFileAtomic(abs, []byte(after), perm); err != nil {
		return "", err
	}

	added, removed := lineStats(before, after)
	return fmt.Sprintf("Updated %s (+%d -%d)", displayPath(tc, abs), added, removed), nil
}
