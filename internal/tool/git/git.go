// Package git implements the git_status, git_add and git_commit tools on go-git.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/pathutil"
	gogit "github.com/go-git/go-git/v5"
)

var (
	ErrNotARepository  = errors.New("not a git repository")
	ErrOutsideRepo     = errors.New("path is outside the repository")
	ErrPathsRequired   = errors.New("at least one path is required")
	ErrPathMissing     = errors.New("path does not exist")
	ErrMessageRequired = errors.New("commit message is required")
	ErrNothingToCommit = errors.New("nothing to commit")
	ErrAuthorRequired  = errors.New("commit author unknown: pass author_name and author_email or set user.name and user.email in git config")
)

// Tools builds the git tools.
type Tools struct {
	now func() time.Time
}

// New creates the git tool set.
func New() *Tools {
	return &Tools{now: time.Now}
}

// All returns every git tool.
func (t *Tools) All() []tool.Tool {
	return []tool.Tool{t.Status(), t.Add(), t.Commit()}
}

// repo is an opened repository with its worktree.
type repo struct {
	repo *gogit.Repository
	wt   *gogit.Worktree
	root string
}

// open finds the repository containing dir, searching parent directories.
func open(dir string) (*repo, error) {
	r, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, dir)
		}
		return nil, err
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, err
	}
	return &repo{repo: r, wt: wt, root: wt.Filesystem.Root()}, nil
}

// rel converts an absolute path to the slash-separated form the worktree uses.
func (r *repo) rel(abs string) (string, error) {
	if !pathutil.Within(r.root, abs) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRepo, abs)
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// branch names the checked out branch, or reports an unborn one.
func (r *repo) branch() string {
	head, err := r.repo.Head()
	if err != nil {
		return "No commits yet"
	}
	if head.Name().IsBranch() {
		return "On branch " + head.Name().Short()
	}
	return "HEAD detached at " + head.Hash().String()[:7]
}

// changes lists "XY path" lines for every non-clean entry, sorted by path.
func changes(status gogit.Status) []string {
	paths := make([]string, 0, len(status))
	for path, s := range status {
		if s.Staging == gogit.Unmodified && s.Worktree == gogit.Unmodified {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	lines := make([]string, len(paths))
	for i, path := range paths {
		s := status[path]
		lines[i] = fmt.Sprintf("%c%c %s", s.Staging, s.Worktree, path)
	}
	return lines
}

// staged lists paths with changes recorded in the index.
func staged(status gogit.Status) []string {
	var paths []string
	for path, s := range status {
		if s.Staging != gogit.Unmodified && s.Staging != gogit.Untracked {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}
