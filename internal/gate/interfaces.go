package gate

import (
	"context"

	"github.com/Cyclone1070/terminus/internal/tool"
)

// sessionState is the slice of the session the gate reads and updates.
type sessionState interface {
	ConfirmationEnabled() bool
	IsToolAlwaysAllowed(name string) bool
	AllowToolAlwaysUnlessDone(ctx context.Context, name string) bool
	IsCommandAllowed(root string) bool
	AllowCommandUnlessDone(ctx context.Context, root string) bool
}

// Prompter asks the user for a decision. Implementations must return promptly with
// ctx.Err() when ctx is cancelled.
type Prompter interface {
	ReadPermission(ctx context.Context, prompt string, preview *tool.Preview) (tool.Decision, error)
}
