// Package engine turns one tool call into exactly one tool result.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/terminus/internal/cancel"
	"github.com/Cyclone1070/terminus/internal/display"
	"github.com/Cyclone1070/terminus/internal/logging"
	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/Cyclone1070/terminus/internal/tool/pathutil"
	"github.com/charmbracelet/log"
)

// Failure kinds reported in models.ToolResult.ErrorKind.
const (
	KindUnknownTool         = "unknown_tool"
	KindInvalidArguments    = "invalid_arguments"
	KindToolExecution       = "tool_execution_failure"
	KindConfirmationFailure = "confirmation_failure"
)

// Engine validates, confirms and runs tool calls.
type Engine struct {
	registry toolRegistry
	gate     confirmer
	session  sessionState
	sink     display.Sink
	resolver *pathutil.Resolver
	logger   *log.Logger
}

// New creates an Engine. A nil sink or logger discards output.
func New(registry toolRegistry, gate confirmer, session sessionState, sink display.Sink, logger *log.Logger) *Engine {
	return &Engine{
		registry: registry,
		gate:     gate,
		session:  session,
		sink:     display.OrDiscard(sink),
		resolver: pathutil.NewResolver(),
		logger:   logging.OrDiscard(logger),
	}
}

// Execute runs call and always returns a result for it. Nothing here returns an error:
// every failure is converted into a failure or cancelled result for the model.
func (e *Engine) Execute(ctx context.Context, call models.ToolCall) models.ToolResult {
	if ctx.Err() != nil {
		return cancelled(call, "Request cancelled before the tool ran.")
	}

	t, err := e.registry.Resolve(call.Name)
	if err != nil {
		e.logger.Warn("unknown tool", "name", call.Name)
		return failure(call, KindUnknownTool, fmt.Sprintf("Error: tool %q does not exist.\n\nAvailable tools: %s",
			call.Name, strings.Join(e.registry.Names(), ", ")))
	}
	desc := t.Descriptor()

	if err := tool.ValidateArgs(desc.Parameters, call.Args); err != nil {
		return e.invalidArguments(call, desc, err)
	}
	req, err := t.Decode(call.Args)
	if err != nil {
		return e.invalidArguments(call, desc, err)
	}

	tc := &toolContext{engine: e}

	if result, ok := e.confirm(ctx, call, t, tc, req); !ok {
		return result
	}

	e.logger.Debug("tool call", "id", call.ID, "name", call.Name)
	e.sink.RenderStatus(fmt.Sprintf("executing %s", desc.Name))
	output, err := e.invoke(ctx, t, tc, req)
	e.sink.RenderStatus(fmt.Sprintf("done %s", desc.Name))

	if err != nil {
		if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, cancel.ErrCancelled)) {
			return cancelled(call, fmt.Sprintf("%s was interrupted by the user.", desc.Name))
		}
		execErr := &tool.ExecutionError{Tool: desc.Name, Cause: err}
		e.logger.Warn("tool failed", "name", desc.Name, "err", err)
		return failure(call, KindToolExecution, "Error: "+execErr.Error())
	}

	return models.ToolResult{
		ID:      call.ID,
		Name:    call.Name,
		Status:  models.StatusSuccess,
		Content: output,
	}
}

// confirm asks the gate when needed. It returns false with the result to
// record when the call must not run.
func (e *Engine) confirm(ctx context.Context, call models.ToolCall, t tool.Tool, tc tool.Context, req any) (models.ToolResult, bool) {
	desc := t.Descriptor()

	root := ""
	need := false
	if cr, ok := req.(tool.CommandRequest); ok {
		root = cr.CommandRoot()
		need = e.gate.ShouldConfirmCommand(desc, root)
	} else {
		need = e.gate.ShouldConfirm(desc)
	}
	if !need {
		return models.ToolResult{}, true
	}

	preview := e.preview(t, tc, req, call)
	e.sink.RenderToolPreview(preview)

	decision, err := e.gate.RequestConfirmation(ctx, desc, preview, root)
	if err != nil {
		if errors.Is(err, cancel.ErrCancelled) {
			return cancelled(call, "Request cancelled while waiting for confirmation."), false
		}
		e.logger.Error("confirmation failed", "name", desc.Name, "err", err)
		return failure(call, KindConfirmationFailure, fmt.Sprintf("Error: could not get confirmation: %v", err)), false
	}
	if !decision.Approved() {
		e.logger.Info("tool denied", "name", desc.Name)
		return cancelled(call, fmt.Sprintf("User denied the %s call. Ask before trying something else.", desc.Name)), false
	}
	return models.ToolResult{}, true
}

// preview uses the tool's own rendering when it has one, else the raw arguments.
func (e *Engine) preview(t tool.Tool, tc tool.Context, req any, call models.ToolCall) tool.Preview {
	if p, ok := t.(tool.Previewer); ok {
		preview, err := p.Preview(tc, req)
		if err == nil {
			return preview
		}
		if !errors.Is(err, tool.ErrNoPreview) {
			e.logger.Debug("preview failed", "name", call.Name, "err", err)
		}
	}

	body, err := json.MarshalIndent(call.Args, "", "  ")
	if err != nil || len(call.Args) == 0 {
		body = []byte("(no arguments)")
	}
	return tool.Preview{
		Kind:  tool.PreviewText,
		Title: fmt.Sprintf("Run %s?", call.Name),
		Body:  string(body),
	}
}

// invoke runs the tool, turning a panic into an error.
func (e *Engine) invoke(ctx context.Context, t tool.Tool, tc tool.Context, req any) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool panicked", "name", t.Descriptor().Name, "panic", r)
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return t.Execute(ctx, tc, req)
}

func (e *Engine) invalidArguments(call models.ToolCall, desc tool.Descriptor, err error) models.ToolResult {
	return failure(call, KindInvalidArguments, fmt.Sprintf("Error: %v\n\nExpected schema for %s:\n%s",
		err, desc.Name, desc.Parameters.String()))
}

func failure(call models.ToolCall, kind, content string) models.ToolResult {
	return models.ToolResult{
		ID:        call.ID,
		Name:      call.Name,
		Status:    models.StatusFailure,
		Content:   content,
		ErrorKind: kind,
	}
}

func cancelled(call models.ToolCall, content string) models.ToolResult {
	return models.ToolResult{
		ID:      call.ID,
		Name:    call.Name,
		Status:  models.StatusCancelled,
		Content: content,
	}
}

// Cancelled builds the result recorded for a call that never ran because the request stopped.
func Cancelled(call models.ToolCall) models.ToolResult {
	return cancelled(call, "Request cancelled before the tool ran.")
}
