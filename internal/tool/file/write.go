package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/fsutil"
)

type WriteFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (r *WriteFileRequest) Validate() error {
	if r.Path == "" {
		return ErrPathRequired
	}
	return nil
}

// WriteFile returns the write_file tool. It only creates new files.
func (t *Tools) WriteFile() tool.Tool {
	return tool.New(tool.Descriptor{
		Name:        "write_file",
		Description: "Create a new file with the given content. Fails if the file exists; use update_file to change existing files.",
		Safety:      tool.SafetyConfirm,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":    {Type: tool.TypeString, Description: "File path to create"},
				"content": {Type: tool.TypeString, Description: "Full file content"},
			},
			Required: []string{"path", "content"},
		},
	}, t.writeFile, tool.WithPreview(t.previewWrite))
}

func (t *Tools) previewWrite(tc tool.Context, req *WriteFileRequest) (tool.Preview, error) {
	abs := tc.Resolve(req.Path)
	name := displayPath(tc, abs)
	return tool.Preview{
		Kind:  tool.PreviewDiff,
		Title: fmt.Sprintf("Create %s", name),
		Body:  unifiedDiff(filepath.ToSlash(name), "", req.Content),
	}, nil
}

func (t *Tools) writeFile(ctx context.Context, tc tool.Context, req *WriteFileRequest) (string, error) {
	abs := tc.Resolve(req.Path)
	content := []byte(req.Content)

	if int64(len(content)) > t.maxFileSize {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(content), t.maxFileSize)
	}
	if fsutil.IsBinary(content) {
		return "", fmt.Errorf("%w: refusing to write binary content to %s", ErrBinaryFile, abs)
	}

	_, err := t.fs.Stat(abs)
	if err == nil {
		return "", fmt.Errorf("%w: %s", ErrFileExists, abs)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := confirmOutside(ctx, tc, "Write", abs); err != nil {
		return "", err
	}

	if err := t.fs.EnsureDirs(filepath.Dir(abs)); err != nil {
		return "", err
	}
	if err := t.fs.WriteFileAtomic(abs, content, 0o644); err != nil {
		return "", err
	}

	lines := len(fsutil.SplitLines(req.Content))
	return fmt.Sprintf("Created %s (%d lines)", displayPath(tc, abs), lines), nil
}
