package models

// Role identifies the author of a message in the conversation history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single message in the conversation history.
// Position in history is significant: it is the causal order of the turn.
type Message struct {
	Role    Role
	Content string

	// For assistant messages that request tools
	ToolCalls []ToolCall

	// For tool messages carrying results
	ToolResults []ToolResult
}

// ToolCall represents a structured tool invocation from the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ResultStatus is the outcome class of a tool invocation.
type ResultStatus string

const (
	StatusSuccess   ResultStatus = "success"
	StatusFailure   ResultStatus = "failure"
	StatusCancelled ResultStatus = "cancelled"
)

// ToolResult represents the result of a tool invocation.
type ToolResult struct {
	ID      string // Matches ToolCall.ID
	Name    string
	Status  ResultStatus
	Content string // Payload fed back to the model

	// ErrorKind names the failure class when Status is StatusFailure
	// (e.g. "unknown_tool", "invalid_arguments", "tool_execution_failure").
	ErrorKind string
}

// IsError reports whether the result should be flagged as an error to the provider.
func (r ToolResult) IsError() bool {
	return r.Status != StatusSuccess
}

// UserMessage builds a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ToolMessage wraps results into a single tool message.
func ToolMessage(results ...ToolResult) Message {
	return Message{Role: RoleTool, ToolResults: results}
}
