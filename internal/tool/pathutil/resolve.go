// Package pathutil resolves user and model supplied paths against a working directory.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver expands a leading ~ and makes paths absolute.
type Resolver struct {
	homeDir func() (string, error)
}

// NewResolver creates a Resolver using the current user's home directory.
func NewResolver() *Resolver {
	return &Resolver{homeDir: os.UserHomeDir}
}

// Resolve returns path as an absolute, cleaned path. Relative paths are joined
// to base. "~" and "~/x" expand to the home directory; "~user" is left alone.
func (r *Resolver) Resolve(base, path string) string {
	path = r.expandTilde(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func (r *Resolver) expandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path
	}
	home, err := r.homeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Within reports whether path is root or below it. Both must be absolute and clean.
func Within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
