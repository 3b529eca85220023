package git

import (
	"context"
	"strings"

	"github.com/Cyclone1070/terminus/internal/tool"
)

type StatusRequest struct{}

// Status returns the git_status tool.
func (t *Tools) Status() tool.Tool {
	return tool.New(tool.Descriptor{
		Name:        "git_status",
		Description: "Show the branch and changed files of the repository containing the working directory, in 'git status --short' format.",
		Safety:      tool.SafetySafe,
	}, t.status)
}

func (t *Tools) status(ctx context.Context, tc tool.Context, req *StatusRequest) (string, error) {
	r, err := open(tc.WorkingDir())
	if err != nil {
		return "", err
	}
	status, err := r.wt.Status()
	if err != nil {
		return "", err
	}

	lines := changes(status)
	if len(lines) == 0 {
		return r.branch() + "\nnothing to commit, working tree clean", nil
	}
	return r.branch() + "\n" + strings.Join(lines, "\n"), nil
}
