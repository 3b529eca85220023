// Package command implements the slash commands typed at the prompt. Commands
// run outside the request loop and never reach the model.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Cyclone1070/terminus/internal/cancel"
	"github.com/Cyclone1070/terminus/internal/display"
	"github.com/Cyclone1070/terminus/internal/logging"
	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/charmbracelet/log"
)

var (
	// ErrExit asks the caller to end the session.
	ErrExit           = errors.New("exit requested")
	ErrUnknownCommand = errors.New("unknown command")
	ErrBusy           = errors.New("a request is running; interrupt it first")
	ErrUsage          = errors.New("usage")
)

// Prefix marks a line as a command.
const Prefix = "/"

type sessionState interface {
	History() []models.Message
	Clear()
	Len() int
	WorkingDir() string
	Model() string
	SetModel(model string)
	ConfirmationEnabled() bool
	ToggleConfirmation() bool
	AllowedCommands() []string
	AlwaysAllowedTools() []string
}

type requestState interface {
	State() cancel.State
}

type providerBuilder interface {
	Build(ctx context.Context, model string) (provider.Provider, error)
}

type providerHolder interface {
	Provider() provider.Provider
	SetProvider(p provider.Provider)
}

// Deps are the collaborators commands act on.
type Deps struct {
	Session   sessionState
	Requests  requestState
	Builder   providerBuilder
	Providers providerHolder
	Sink      display.Sink
	Version   string
	Logger    *log.Logger
}

// Command is one built-in.
type Command struct {
	Name    string
	Args    string
	Summary string
	// Idle commands are refused while a request is running.
	Idle bool
	Run  func(ctx context.Context, args []string) error
}

// Handler dispatches command lines.
type Handler struct {
	deps     Deps
	sink     display.Sink
	logger   *log.Logger
	commands map[string]*Command
}

// New creates a Handler with the built-in commands.
func New(deps Deps) *Handler {
	h := &Handler{
		deps:     deps,
		sink:     display.OrDiscard(deps.Sink),
		logger:   logging.OrDiscard(deps.Logger),
		commands: make(map[string]*Command),
	}
	for _, c := range h.builtins() {
		h.commands[c.Name] = c
	}
	return h
}

// IsCommand reports whether line is handled here rather than sent to the model.
func IsCommand(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, Prefix) || isExitWord(line)
}

// Handle runs line when it is a command. The bool reports whether it was one.
func (h *Handler) Handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if isExitWord(line) {
		return true, ErrExit
	}
	if !strings.HasPrefix(line, Prefix) {
		return false, nil
	}

	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	cmd, ok := h.commands[name]
	if !ok {
		return true, fmt.Errorf("%w: %s (type /help to see available commands)", ErrUnknownCommand, name)
	}
	if cmd.Idle && h.deps.Requests != nil && h.deps.Requests.State() != cancel.Idle {
		return true, fmt.Errorf("%s: %w", name, ErrBusy)
	}

	h.logger.Debug("command", "name", name, "args", len(fields)-1)
	return true, cmd.Run(ctx, fields[1:])
}

// Commands returns the built-ins sorted by name.
func (h *Handler) Commands() []*Command {
	out := make([]*Command, 0, len(h.commands))
	for _, c := range h.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func isExitWord(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true
	}
	return false
}
