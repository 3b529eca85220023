package search

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/paginationutil"
)

type FindRequest struct {
	Pattern        string `json:"pattern"`
	Path           string `json:"path,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	IncludeIgnored bool   `json:"include_ignored,omitempty"`
}

func (r *FindRequest) Validate() error {
	if strings.TrimSpace(r.Pattern) == "" {
		return ErrPatternRequired
	}
	if _, err := path.Match(r.Pattern, ""); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, r.Pattern)
	}
	if r.Limit < 0 {
		return ErrInvalidLimit
	}
	if r.Offset < 0 {
		return ErrInvalidOffset
	}
	return nil
}

// matches tests a glob against the base name, or against the whole
// relative path when the glob has a separator.
func (r *FindRequest) matches(rel string) bool {
	if strings.Contains(r.Pattern, "/") {
		ok, _ := path.Match(r.Pattern, rel)
		return ok
	}
	ok, _ := path.Match(r.Pattern, path.Base(rel))
	return ok
}

// Find returns the find tool.
func (t *Tools) Find() tool.Tool {
	return tool.New(tool.Descriptor{
		Name: "find",
		Description: "Find files by glob pattern. Patterns without '/' match file names (e.g. '*.go'), " +
			"patterns with '/' match paths relative to the search directory (e.g. 'cmd/*/main.go'). Gitignored files are skipped unless include_ignored is set.",
		Safety: tool.SafetySafe,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"pattern":         {Type: tool.TypeString, Description: "Glob pattern"},
				"path":            {Type: tool.TypeString, Description: "Directory to search, defaults to the working directory"},
				"offset":          {Type: tool.TypeInteger, Description: "Number of results to skip, for paging"},
				"limit":           {Type: tool.TypeInteger, Description: "Maximum number of results"},
				"include_ignored": {Type: tool.TypeBoolean, Description: "Include gitignored files"},
			},
			Required: []string{"pattern"},
		},
	}, t.find)
}

func (t *Tools) find(ctx context.Context, tc tool.Context, req *FindRequest) (string, error) {
	root, err := t.searchRoot(tc, req.Path)
	if err != nil {
		return "", err
	}
	limit := clampLimit(req.Limit, t.defaultFindLimit, t.maxFindLimit)

	// One extra match tells whether another page exists.
	want := req.Offset + limit + 1
	var found []string
	err = t.walk(ctx, root, req.IncludeIgnored, func(f file) (bool, error) {
		if req.matches(f.rel) {
			found = append(found, f.rel)
		}
		return len(found) < want, nil
	})
	if err != nil {
		return "", err
	}

	results, page := paginationutil.Apply(found, req.Offset, limit)
	if len(results) == 0 {
		return fmt.Sprintf("No files matching %q in %s", req.Pattern, root), nil
	}
	return strings.Join(results, "\n") + moreNote(page, "results"), nil
}
