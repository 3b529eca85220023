package file

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/fsutil"
	"github.com/dustin/go-humanize"
)

type ReadFileRequest struct {
	Path   string `json:"path"`
	Offset int64  `json:"offset,omitempty"`
	Limit  int64  `json:"limit,omitempty"`
}

func (r *ReadFileRequest) Validate() error {
	if r.Path == "" {
		return ErrPathRequired
	}
	if r.Offset < 0 || r.Limit < 0 {
		return ErrInvalidRange
	}
	return nil
}

// ReadFile returns the read_file tool.
func (t *Tools) ReadFile() tool.Tool {
	return tool.New(tool.Descriptor{
		Name:        "read_file",
		Description: "Read the contents of a text file. Use offset and limit (in bytes) to read part of a large file.",
		Safety:      tool.SafetySafe,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":   {Type: tool.TypeString, Description: "File path, relative to the working directory or absolute"},
				"offset": {Type: tool.TypeInteger, Description: "Byte offset to start reading from"},
				"limit":  {Type: tool.TypeInteger, Description: "Maximum number of bytes to read"},
			},
			Required: []string{"path"},
		},
	}, t.readFile)
}

func (t *Tools) readFile(ctx context.Context, tc tool.Context, req *ReadFileRequest) (string, error) {
	abs := tc.Resolve(req.Path)

	info, err := t.fs.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileMissing, abs)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrIsDirectory, abs)
	}
	if req.Limit == 0 && info.Size()-req.Offset > t.maxFileSize {
		return "", fmt.Errorf("%w: %s is %s (limit %s), read it in parts with offset and limit",
			ErrFileTooLarge, abs, humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(t.maxFileSize)))
	}

	limit := req.Limit
	if limit > t.maxFileSize {
		limit = t.maxFileSize
	}
	data, err := t.fs.ReadFileRange(abs, req.Offset, limit)
	if err != nil {
		return "", err
	}
	if fsutil.IsBinary(data) {
		return "", fmt.Errorf("%w: %s", ErrBinaryFile, abs)
	}
	if len(data) == 0 {
		return "(empty)", nil
	}
	return string(data), nil
}
