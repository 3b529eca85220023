package search

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/fsutil"
	"github.com/Cyclone1070/terminus/internal/tool/paginationutil"
)

type GrepRequest struct {
	Pattern        string `json:"pattern"`
	Path           string `json:"path,omitempty"`
	Include        string `json:"include,omitempty"`
	CaseSensitive  bool   `json:"case_sensitive,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	IncludeIgnored bool   `json:"include_ignored,omitempty"`
}

func (r *GrepRequest) Validate() error {
	if r.Pattern == "" {
		return ErrPatternRequired
	}
	if _, err := r.compile(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if r.Include != "" {
		if _, err := path.Match(r.Include, ""); err != nil {
			return fmt.Errorf("%w: include %q", ErrInvalidPattern, r.Include)
		}
	}
	if r.Limit < 0 {
		return ErrInvalidLimit
	}
	if r.Offset < 0 {
		return ErrInvalidOffset
	}
	return nil
}

func (r *GrepRequest) compile() (*regexp.Regexp, error) {
	if r.CaseSensitive {
		return regexp.Compile(r.Pattern)
	}
	return regexp.Compile("(?i)" + r.Pattern)
}

// Grep returns the grep tool.
func (t *Tools) Grep() tool.Tool {
	return tool.New(tool.Descriptor{
		Name: "grep",
		Description: "Search file contents with a regular expression (RE2 syntax). Returns 'path:line: text' for each match. " +
			"Case-insensitive unless case_sensitive is set. Binary and gitignored files are skipped.",
		Safety: tool.SafetySafe,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"pattern":         {Type: tool.TypeString, Description: "Regular expression"},
				"path":            {Type: tool.TypeString, Description: "Directory to search, defaults to the working directory"},
				"include":         {Type: tool.TypeString, Description: "Only search files whose name matches this glob, e.g. '*.go'"},
				"case_sensitive":  {Type: tool.TypeBoolean, Description: "Match case exactly"},
				"offset":          {Type: tool.TypeInteger, Description: "Number of matching lines to skip, for paging"},
				"limit":           {Type: tool.TypeInteger, Description: "Maximum number of matching lines"},
				"include_ignored": {Type: tool.TypeBoolean, Description: "Include gitignored files"},
			},
			Required: []string{"pattern"},
		},
	}, t.grep)
}

func (t *Tools) grep(ctx context.Context, tc tool.Context, req *GrepRequest) (string, error) {
	re, err := req.compile()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	root, err := t.searchRoot(tc, req.Path)
	if err != nil {
		return "", err
	}
	limit := clampLimit(req.Limit, t.defaultGrepLimit, t.maxGrepLimit)

	want := req.Offset + limit + 1
	var matches []string
	err = t.walk(ctx, root, req.IncludeIgnored, func(f file) (bool, error) {
		if req.Include != "" {
			if ok, _ := path.Match(req.Include, path.Base(f.rel)); !ok {
				return true, nil
			}
		}
		if info, err := t.fs.Stat(f.abs); err != nil || (t.maxFileSize > 0 && info.Size() > t.maxFileSize) {
			return true, nil
		}
		content, err := t.fs.ReadFile(f.abs)
		if err != nil || fsutil.IsBinary(content) {
			return true, nil
		}
		for i, line := range fsutil.SplitLines(string(content)) {
			if !re.MatchString(line) {
				continue
			}
			matches = append(matches, fmt.Sprintf("%s:%d: %s", f.rel, i+1, fsutil.Truncate(strings.TrimSpace(line), t.maxLineLength)))
			if len(matches) >= want {
				return false, nil
			}
		}
		return true, nil
	})
	if err != nil {
		return "", err
	}

	results, page := paginationutil.Apply(matches, req.Offset, limit)
	if len(results) == 0 {
		return fmt.Sprintf("No matches for %q in %s", req.Pattern, root), nil
	}
	return strings.Join(results, "\n") + moreNote(page, "matches"), nil
}
