package engine

import (
	"context"

	"github.com/Cyclone1070/terminus/internal/tool"
)

// toolRegistry is the read side of tool.Registry.
type toolRegistry interface {
	Resolve(name string) (tool.Tool, error)
	Names() []string
}

// confirmer is the confirmation gate.
type confirmer interface {
	ShouldConfirm(d tool.Descriptor) bool
	ShouldConfirmCommand(d tool.Descriptor, root string) bool
	RequestConfirmation(ctx context.Context, d tool.Descriptor, preview tool.Preview, root string) (tool.Decision, error)
	Ask(ctx context.Context, preview tool.Preview) (tool.Decision, error)
}

// sessionState is the slice of the session the engine reads.
type sessionState interface {
	WorkingDir() string
	SetWorkingDir(path string) (string, error)
	ConfirmationEnabled() bool
}
