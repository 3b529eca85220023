// Package openai implements the provider contract over the OpenAI chat completions API.
// Ollama is served through its OpenAI-compatible endpoint.
package openai

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/Cyclone1070/terminus/internal/tool"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultOllamaBaseURL is Ollama's OpenAI-compatible endpoint.
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

// ChatCompletions is the subset of the SDK's completion service used here.
type ChatCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Config selects credentials and endpoint.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int
}

// OpenAIProvider implements provider.Provider.
type OpenAIProvider struct {
	completions     ChatCompletions
	model           string
	maxOutputTokens int
}

// New builds a provider on a real SDK client.
func New(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeConfig, Message: "OPENAI_API_KEY is not set"}
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return NewWithCompletions(&client.Chat.Completions, cfg.Model, cfg.MaxOutputTokens), nil
}

// NewWithCompletions builds a provider on any ChatCompletions implementation.
func NewWithCompletions(completions ChatCompletions, model string, maxOutputTokens int) *OpenAIProvider {
	return &OpenAIProvider{completions: completions, model: model, maxOutputTokens: maxOutputTokens}
}

func (p *OpenAIProvider) Model() string {
	return p.model
}

// Generate sends one reasoning step.
func (p *OpenAIProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: toOpenAIMessages(req.System, req.History),
	}
	if len(req.Tools) > 0 {
		params.Tools = toOpenAITools(req.Tools)
	}
	if p.maxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(p.maxOutputTokens))
	}

	completion, err := p.completions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, mapOpenAIError(err)
	}
	return fromOpenAIResponse(completion)
}

func toOpenAIMessages(system string, history []models.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}

	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case models.RoleAssistant:
			out = append(out, assistantMessage(msg))
		case models.RoleTool:
			for _, r := range msg.ToolResults {
				out = append(out, openai.ToolMessage(r.Content, r.ID))
			}
		}
	}
	return out
}

func assistantMessage(msg models.Message) openai.ChatCompletionMessageParamUnion {
	param := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		param.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openai.String(msg.Content),
		}
	}

	for _, call := range msg.ToolCalls {
		args, err := json.Marshal(call.Args)
		if err != nil {
			args = []byte("{}")
		}
		param.ToolCalls = append(param.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: call.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      call.Name,
				Arguments: string(args),
			},
		})
	}

	return openai.ChatCompletionMessageParamUnion{OfAssistant: &param}
}

func toOpenAITools(descs []tool.Descriptor) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(descs))
	for _, d := range descs {
		t := openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:       d.Name,
				Parameters: toFunctionParameters(d.Parameters),
			},
		}
		if d.Description != "" {
			t.Function.Description = openai.String(d.Description)
		}
		out = append(out, t)
	}
	return out
}

// toFunctionParameters round-trips the schema through JSON into the SDK's map type.
func toFunctionParameters(s *tool.Schema) shared.FunctionParameters {
	params := shared.FunctionParameters{"type": "object", "properties": map[string]any{}}
	if s == nil {
		return params
	}
	data, err := json.Marshal(s)
	if err != nil {
		return params
	}
	if err := json.Unmarshal(data, &params); err != nil {
		return shared.FunctionParameters{"type": "object", "properties": map[string]any{}}
	}
	return params
}

func fromOpenAIResponse(completion *openai.ChatCompletion) (*provider.Response, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeMalformed, Message: "no choices in response"}
	}

	msg := completion.Choices[0].Message
	out := &provider.Response{
		Text: msg.Content,
		Usage: provider.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}

	for _, tc := range msg.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, &provider.ProviderError{
					Code:       provider.ErrorCodeMalformed,
					Message:    "tool call arguments are not valid JSON",
					Underlying: err,
				}
			}
		}
		out.ToolCalls = append(out.ToolCalls, models.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}

	return out, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return provider.FromStatus(apiErr.StatusCode, apiErr.Message, err)
	}
	return provider.Normalize(err)
}
