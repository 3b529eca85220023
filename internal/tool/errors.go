package tool

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateTool    = errors.New("duplicate tool")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrToolExecution    = errors.New("tool execution failure")
	ErrInvalidSafety    = errors.New("invalid safety classification")
	ErrEmptyName        = errors.New("tool name is required")
	ErrNoPreview        = errors.New("no custom preview")
)

// ExecutionError wraps any failure raised inside a tool.
type ExecutionError struct {
	Tool  string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrToolExecution, e.Tool, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func (e *ExecutionError) Is(target error) bool {
	return target == ErrToolExecution
}
