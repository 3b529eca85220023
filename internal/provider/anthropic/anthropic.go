// Package anthropic implements the provider contract over the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/Cyclone1070/terminus/internal/tool"
	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 4096

// Messages is the subset of the SDK's message service used here.
type Messages interface {
	New(ctx context.Context, params anthropicsdk.MessageNewParams, opts ...option.RequestOption) (*anthropicsdk.Message, error)
}

// Config selects credentials and endpoint.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int
}

// AnthropicProvider implements provider.Provider.
type AnthropicProvider struct {
	messages  Messages
	model     string
	maxTokens int
}

// New builds a provider on a real SDK client.
func New(cfg Config) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeConfig, Message: "ANTHROPIC_API_KEY is not set"}
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropicsdk.NewClient(opts...)
	return NewWithMessages(&client.Messages, cfg.Model, cfg.MaxOutputTokens), nil
}

// NewWithMessages builds a provider on any Messages implementation.
func NewWithMessages(messages Messages, model string, maxTokens int) *AnthropicProvider {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &AnthropicProvider{messages: messages, model: model, maxTokens: maxTokens}
}

func (p *AnthropicProvider) Model() string {
	return p.model
}

// Generate sends one reasoning step.
func (p *AnthropicProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages:  toAnthropicMessages(req.History),
	}
	if strings.TrimSpace(req.System) != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		tools, err := toAnthropicTools(req.Tools)
		if err != nil {
			return nil, &provider.ProviderError{Code: provider.ErrorCodeInvalidRequest, Message: "encode tool schema", Underlying: err}
		}
		params.Tools = tools
	}

	msg, err := p.messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, mapAnthropicError(err)
	}
	return fromAnthropicMessage(msg)
}

func toAnthropicMessages(history []models.Message) []anthropicsdk.MessageParam {
	out := make([]anthropicsdk.MessageParam, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			text := msg.Content
			if text == "" {
				text = "."
			}
			out = append(out, anthropicsdk.MessageParam{
				Role:    anthropicsdk.MessageParamRoleUser,
				Content: []anthropicsdk.ContentBlockParamUnion{anthropicsdk.NewTextBlock(text)},
			})
		case models.RoleAssistant:
			blocks := make([]anthropicsdk.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, anthropicsdk.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				args := call.Args
				if args == nil {
					args = map[string]any{}
				}
				blocks = append(blocks, anthropicsdk.NewToolUseBlock(call.ID, args, call.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropicsdk.NewTextBlock("."))
			}
			out = append(out, anthropicsdk.MessageParam{Role: anthropicsdk.MessageParamRoleAssistant, Content: blocks})
		case models.RoleTool:
			blocks := make([]anthropicsdk.ContentBlockParamUnion, 0, len(msg.ToolResults))
			for _, r := range msg.ToolResults {
				blocks = append(blocks, anthropicsdk.NewToolResultBlock(r.ID, r.Content, r.IsError()))
			}
			// tool results travel as a user turn
			out = append(out, anthropicsdk.MessageParam{Role: anthropicsdk.MessageParamRoleUser, Content: blocks})
		}
	}
	return out
}

func toAnthropicTools(descs []tool.Descriptor) ([]anthropicsdk.ToolUnionParam, error) {
	out := make([]anthropicsdk.ToolUnionParam, 0, len(descs))
	for _, d := range descs {
		schema, err := encodeSchema(d.Parameters)
		if err != nil {
			return nil, err
		}
		t := &anthropicsdk.ToolParam{Name: d.Name, InputSchema: schema}
		if d.Description != "" {
			t.Description = anthropicsdk.String(d.Description)
		}
		out = append(out, anthropicsdk.ToolUnionParam{OfTool: t})
	}
	return out, nil
}

func encodeSchema(s *tool.Schema) (anthropicsdk.ToolInputSchemaParam, error) {
	if s == nil {
		return anthropicsdk.ToolInputSchemaParam{Type: "object"}, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return anthropicsdk.ToolInputSchemaParam{}, err
	}
	var schema anthropicsdk.ToolInputSchemaParam
	if err := json.Unmarshal(data, &schema); err != nil {
		return anthropicsdk.ToolInputSchemaParam{}, err
	}
	if schema.Type == "" {
		schema.Type = "object"
	}
	return schema, nil
}

func fromAnthropicMessage(msg *anthropicsdk.Message) (*provider.Response, error) {
	if msg == nil {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeMalformed, Message: "empty response"}
	}
	if msg.StopReason == anthropicsdk.StopReasonMaxTokens && len(msg.Content) == 0 {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeContextLength, Message: "response hit the token limit"}
	}

	out := &provider.Response{
		Usage: provider.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}

	var text []string
	for _, block := range msg.Content {
		switch block.Type {
		case "tool_use":
			args := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					return nil, &provider.ProviderError{
						Code:       provider.ErrorCodeMalformed,
						Message:    "tool input is not a JSON object",
						Underlying: err,
					}
				}
			}
			out.ToolCalls = append(out.ToolCalls, models.ToolCall{ID: block.ID, Name: block.Name, Args: args})
		case "text":
			if block.Text != "" {
				text = append(text, block.Text)
			}
		}
	}
	out.Text = strings.Join(text, "")
	return out, nil
}

func mapAnthropicError(err error) error {
	var apiErr *anthropicsdk.Error
	if errors.As(err, &apiErr) {
		return provider.FromStatus(apiErr.StatusCode, http.StatusText(apiErr.StatusCode), err)
	}
	return provider.Normalize(err)
}
