// Package gate decides when a tool invocation needs user approval.
package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cyclone1070/terminus/internal/cancel"
	"github.com/Cyclone1070/terminus/internal/logging"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/charmbracelet/log"
)

var ErrInvalidDecision = errors.New("invalid permission decision")

// Gate is the confirmation gate. The always-allow sets live in the session.
type Gate struct {
	session  sessionState
	prompter Prompter
	logger   *log.Logger
}

// New creates a Gate.
func New(session sessionState, prompter Prompter, logger *log.Logger) *Gate {
	return &Gate{session: session, prompter: prompter, logger: logging.OrDiscard(logger)}
}

// ShouldConfirm reports whether d needs approval before running.
func (g *Gate) ShouldConfirm(d tool.Descriptor) bool {
	if d.Safety == tool.SafetySafe {
		return false
	}
	if !g.session.ConfirmationEnabled() {
		return false
	}
	return !g.session.IsToolAlwaysAllowed(d.Name)
}

// ShouldConfirmCommand is ShouldConfirm for shell requests: an allowed command root skips the prompt.
func (g *Gate) ShouldConfirmCommand(d tool.Descriptor, root string) bool {
	if !g.ShouldConfirm(d) {
		return false
	}
	return root == "" || !g.session.IsCommandAllowed(root)
}

// RequestConfirmation blocks until the user decides or ctx is cancelled.
// An empty root means the decision applies to the tool; otherwise to the command root.
func (g *Gate) RequestConfirmation(ctx context.Context, d tool.Descriptor, preview tool.Preview, root string) (tool.Decision, error) {
	if err := ctx.Err(); err != nil {
		return tool.DecisionDeny, fmt.Errorf("%w: %v", cancel.ErrCancelled, err)
	}

	prompt := fmt.Sprintf("Allow %s?", d.Name)
	if root != "" {
		prompt = fmt.Sprintf("Allow shell command %s?", root)
	}

	decision, err := g.prompter.ReadPermission(ctx, prompt, &preview)
	if err != nil {
		if ctx.Err() != nil {
			return tool.DecisionDeny, fmt.Errorf("%w: %v", cancel.ErrCancelled, ctx.Err())
		}
		return tool.DecisionDeny, fmt.Errorf("failed to get user permission: %w", err)
	}

	switch decision {
	case tool.DecisionApprove, tool.DecisionDeny:
	case tool.DecisionApproveAlways:
		// An interrupt that raced the answer wins; the override is not recorded.
		if root != "" {
			if !g.session.AllowCommandUnlessDone(ctx, root) {
				return tool.DecisionDeny, fmt.Errorf("%w: %v", cancel.ErrCancelled, ctx.Err())
			}
			g.logger.Info("command always allowed", "root", root)
		} else {
			if !g.session.AllowToolAlwaysUnlessDone(ctx, d.Name) {
				return tool.DecisionDeny, fmt.Errorf("%w: %v", cancel.ErrCancelled, ctx.Err())
			}
			g.logger.Info("tool always allowed", "tool", d.Name)
		}
	default:
		return tool.DecisionDeny, fmt.Errorf("%w: %s", ErrInvalidDecision, decision)
	}

	g.logger.Debug("confirmation", "tool", d.Name, "decision", decision)
	return decision, nil
}

// Ask is a one-off prompt raised by a running tool. It never records an override,
// so DecisionApproveAlways is reported as DecisionApprove. With confirmation
// disabled it approves without asking.
func (g *Gate) Ask(ctx context.Context, preview tool.Preview) (tool.Decision, error) {
	if err := ctx.Err(); err != nil {
		return tool.DecisionDeny, fmt.Errorf("%w: %v", cancel.ErrCancelled, err)
	}
	if !g.session.ConfirmationEnabled() {
		return tool.DecisionApprove, nil
	}

	prompt := preview.Title
	if prompt == "" {
		prompt = "Continue?"
	}

	decision, err := g.prompter.ReadPermission(ctx, prompt, &preview)
	if err != nil {
		if ctx.Err() != nil {
			return tool.DecisionDeny, fmt.Errorf("%w: %v", cancel.ErrCancelled, ctx.Err())
		}
		return tool.DecisionDeny, fmt.Errorf("failed to get user permission: %w", err)
	}

	switch decision {
	case tool.DecisionApprove, tool.DecisionApproveAlways:
		if ctx.Err() != nil {
			return tool.DecisionDeny, fmt.Errorf("%w: %v", cancel.ErrCancelled, ctx.Err())
		}
		return tool.DecisionApprove, nil
	case tool.DecisionDeny:
		return tool.DecisionDeny, nil
	default:
		return tool.DecisionDeny, fmt.Errorf("%w: %s", ErrInvalidDecision, decision)
	}
}
