package tool

import (
	"context"
	"encoding/json"
)

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// String renders the schema as indented JSON for error messages sent back to the model.
func (s *Schema) String() string {
	if s == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return string(s.Type)
	}
	return string(data)
}

// Safety is the static confirmation class of a tool.
type Safety string

const (
	// SafetySafe tools never prompt.
	SafetySafe Safety = "safe"
	// SafetyConfirm tools prompt unless the session overrides it.
	SafetyConfirm Safety = "confirm-required"
)

// Descriptor declares a tool's signature and safety class.
// Description is sent to the model verbatim.
type Descriptor struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
	Safety      Safety  `json:"-"`
}

// Decision is the user's answer to a confirmation prompt.
type Decision string

const (
	DecisionApprove       Decision = "approve"
	DecisionDeny          Decision = "deny"
	DecisionApproveAlways Decision = "approve_always"
)

// Approved reports whether the decision lets the tool run.
func (d Decision) Approved() bool {
	return d == DecisionApprove || d == DecisionApproveAlways
}

// PreviewKind selects how a preview is rendered.
type PreviewKind string

const (
	PreviewText  PreviewKind = "text"
	PreviewDiff  PreviewKind = "diff"
	PreviewShell PreviewKind = "shell"
)

// Preview is what the user sees before approving a tool invocation.
type Preview struct {
	Kind  PreviewKind
	Title string
	Body  string
}

// Context is the narrow capability a tool receives while running.
// It is implemented by the execution engine, never by tools.
type Context interface {
	// ConfirmRequest asks the user to approve an additional action.
	ConfirmRequest(ctx context.Context, preview Preview) (Decision, error)

	// ReportStatus shows live progress. It has no effect on the result.
	ReportStatus(text string)

	// WorkingDir returns the session's current working directory.
	WorkingDir() string

	// Resolve makes path absolute relative to WorkingDir.
	Resolve(path string) string

	// ChangeDir moves the session's working directory.
	ChangeDir(path string) error
}

// Tool is the uniform invocation interface over every registered tool.
type Tool interface {
	Descriptor() Descriptor

	// Decode converts validated arguments into the tool's typed request.
	Decode(args map[string]any) (any, error)

	// Execute runs the tool with a request produced by Decode.
	Execute(ctx context.Context, tc Context, req any) (string, error)
}

// Previewer is implemented by tools that render a custom confirmation preview.
// ErrNoPreview asks the caller to fall back to a generic one.
type Previewer interface {
	Preview(tc Context, req any) (Preview, error)
}

// CommandRequest is implemented by shell requests so confirmation can be keyed on the command root.
type CommandRequest interface {
	CommandRoot() string
}
