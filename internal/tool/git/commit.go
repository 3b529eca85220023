package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Cyclone1070/terminus/internal/tool"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type CommitRequest struct {
	Message     string `json:"message"`
	All         bool   `json:"all,omitempty"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"author_email,omitempty"`
}

func (r *CommitRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return ErrMessageRequired
	}
	if (r.AuthorName == "") != (r.AuthorEmail == "") {
		return errors.New("author_name and author_email must be given together")
	}
	return nil
}

// Commit returns the git_commit tool.
func (t *Tools) Commit() tool.Tool {
	return tool.New(tool.Descriptor{
		Name:        "git_commit",
		Description: "Record staged changes in a new commit. With all set, modified and deleted tracked files are staged first.",
		Safety:      tool.SafetyConfirm,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"message":      {Type: tool.TypeString, Description: "Commit message"},
				"all":          {Type: tool.TypeBoolean, Description: "Stage modified and deleted tracked files first"},
				"author_name":  {Type: tool.TypeString, Description: "Author name, defaults to git config user.name"},
				"author_email": {Type: tool.TypeString, Description: "Author email, defaults to git config user.email"},
			},
			Required: []string{"message"},
		},
	}, t.commit, tool.WithPreview(t.previewCommit))
}

func (t *Tools) previewCommit(tc tool.Context, req *CommitRequest) (tool.Preview, error) {
	body := req.Message
	if r, err := open(tc.WorkingDir()); err == nil {
		if status, err := r.wt.Status(); err == nil {
			if paths := committable(status, req.All); len(paths) > 0 {
				body += "\n\n" + strings.Join(paths, "\n")
			}
		}
	}
	return tool.Preview{
		Kind:  tool.PreviewText,
		Title: "Create commit?",
		Body:  body,
	}, nil
}

func (t *Tools) commit(ctx context.Context, tc tool.Context, req *CommitRequest) (string, error) {
	r, err := open(tc.WorkingDir())
	if err != nil {
		return "", err
	}
	status, err := r.wt.Status()
	if err != nil {
		return "", err
	}
	paths := committable(status, req.All)
	if len(paths) == 0 {
		return "", ErrNothingToCommit
	}

	opts := &gogit.CommitOptions{All: req.All}
	if req.AuthorName != "" {
		opts.Author = &object.Signature{Name: req.AuthorName, Email: req.AuthorEmail, When: t.now()}
	}

	hash, err := r.wt.Commit(req.Message, opts)
	if err != nil {
		if errors.Is(err, gogit.ErrMissingAuthor) {
			return "", ErrAuthorRequired
		}
		return "", err
	}

	subject, _, _ := strings.Cut(req.Message, "\n")
	return fmt.Sprintf("Committed %s: %s (%d files)", hash.String()[:7], subject, len(paths)), nil
}

// committable lists what a commit would record: staged paths, plus
// modified or deleted tracked files when all is set.
func committable(status gogit.Status, all bool) []string {
	if !all {
		return staged(status)
	}
	var paths []string
	for path, s := range status {
		switch {
		case s.Staging != gogit.Unmodified && s.Staging != gogit.Untracked:
			paths = append(paths, path)
		case s.Worktree == gogit.Modified || s.Worktree == gogit.Deleted:
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}
