package fsutil

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreMatcher applies the .gitignore files under a root, nested ones included.
// The .git directory itself is always ignored.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads every .gitignore below root.
func NewIgnoreMatcher(root string) (*IgnoreMatcher, error) {
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, gitignore.ParsePattern(".git", nil))
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore reports whether a path relative to the root is ignored.
func (m *IgnoreMatcher) ShouldIgnore(relPath string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	segments := splitPath(relPath)
	if len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

func splitPath(path string) []string {
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
