// Package provider defines the contract with remote reasoning services.
package provider

import (
	"context"

	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/tool"
)

// Provider is a remote reasoning service.
type Provider interface {
	// Generate produces the next reasoning step for the conversation.
	// Errors other than context cancellation are *ProviderError.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Model returns the model name the provider talks to.
	Model() string
}

// Request is the outbound context for one reasoning step.
type Request struct {
	System  string
	Tools   []tool.Descriptor
	History []models.Message
}

// Response is one reasoning step: optional text plus tool calls in the order the model issued them.
type Response struct {
	Text      string
	ToolCalls []models.ToolCall
	Usage     Usage
}

// Usage reports token accounting when the backend provides it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// HasToolCalls reports whether the step requests tools.
func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}
