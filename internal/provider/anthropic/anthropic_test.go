package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/Cyclone1070/terminus/internal/tool"
	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockMessages implements Messages for testing.
type MockMessages struct {
	NewFunc func(ctx context.Context, params anthropicsdk.MessageNewParams) (*anthropicsdk.Message, error)
}

func (m *MockMessages) New(ctx context.Context, params anthropicsdk.MessageNewParams, opts ...option.RequestOption) (*anthropicsdk.Message, error) {
	if m.NewFunc != nil {
		return m.NewFunc(ctx, params)
	}
	return nil, errors.New("NewFunc not set")
}

func TestGenerate_BuildsParamsAndParsesToolUse(t *testing.T) {
	mock := &MockMessages{
		NewFunc: func(ctx context.Context, params anthropicsdk.MessageNewParams) (*anthropicsdk.Message, error) {
			assert.Equal(t, anthropicsdk.Model("claude-sonnet"), params.Model)
			assert.Equal(t, int64(defaultMaxTokens), params.MaxTokens)
			require.Len(t, params.System, 1)
			assert.Equal(t, "be terse", params.System[0].Text)

			require.Len(t, params.Messages, 3)
			assert.Equal(t, anthropicsdk.MessageParamRoleUser, params.Messages[0].Role)
			assert.Equal(t, anthropicsdk.MessageParamRoleAssistant, params.Messages[1].Role)
			assert.Equal(t, anthropicsdk.MessageParamRoleUser, params.Messages[2].Role)
			require.NotNil(t, params.Messages[2].Content[0].OfToolResult)
			assert.Equal(t, "toolu_0", params.Messages[2].Content[0].OfToolResult.ToolUseID)

			require.Len(t, params.Tools, 1)
			require.NotNil(t, params.Tools[0].OfTool)
			assert.Equal(t, "grep", params.Tools[0].OfTool.Name)

			return &anthropicsdk.Message{
				Content: []anthropicsdk.ContentBlockUnion{
					{Type: "text", Text: "searching"},
					{Type: "tool_use", ID: "toolu_1", Name: "grep", Input: json.RawMessage(`{"pattern":"TODO"}`)},
				},
				Usage: anthropicsdk.Usage{InputTokens: 2, OutputTokens: 3},
			}, nil
		},
	}
	p := NewWithMessages(mock, "claude-sonnet", 0)

	resp, err := p.Generate(context.Background(), &provider.Request{
		System: "be terse",
		Tools: []tool.Descriptor{{
			Name:       "grep",
			Parameters: &tool.Schema{Type: tool.TypeObject, Properties: map[string]*tool.Schema{"pattern": {Type: tool.TypeString}}},
		}},
		History: []models.Message{
			models.UserMessage("find todos"),
			{Role: models.RoleAssistant, ToolCalls: []models.ToolCall{{ID: "toolu_0", Name: "grep", Args: map[string]any{"pattern": "FIXME"}}}},
			models.ToolMessage(models.ToolResult{ID: "toolu_0", Name: "grep", Status: models.StatusFailure, Content: "no matches"}),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "searching", resp.Text)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_1", resp.ToolCalls[0].ID)
	assert.Equal(t, map[string]any{"pattern": "TODO"}, resp.ToolCalls[0].Args)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
}

func TestGenerate_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   provider.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, provider.ErrorCodeAuth},
		{"rate limited", http.StatusTooManyRequests, provider.ErrorCodeRateLimit},
		{"server error", http.StatusInternalServerError, provider.ErrorCodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockMessages{
				NewFunc: func(ctx context.Context, params anthropicsdk.MessageNewParams) (*anthropicsdk.Message, error) {
					return nil, &anthropicsdk.Error{StatusCode: tt.status}
				},
			}
			p := NewWithMessages(mock, "claude-sonnet", 100)

			_, err := p.Generate(context.Background(), &provider.Request{})

			var pe *provider.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.code, pe.Code)
			assert.ErrorIs(t, err, provider.ErrProviderUnavailable)
		})
	}
}

func TestGenerate_CancelledContextPassesThrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock := &MockMessages{
		NewFunc: func(ctx context.Context, params anthropicsdk.MessageNewParams) (*anthropicsdk.Message, error) {
			return nil, ctx.Err()
		},
	}
	p := NewWithMessages(mock, "claude-sonnet", 0)

	_, err := p.Generate(ctx, &provider.Request{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, provider.ErrProviderUnavailable)
}

func TestGenerate_MalformedToolInput(t *testing.T) {
	mock := &MockMessages{
		NewFunc: func(ctx context.Context, params anthropicsdk.MessageNewParams) (*anthropicsdk.Message, error) {
			return &anthropicsdk.Message{Content: []anthropicsdk.ContentBlockUnion{
				{Type: "tool_use", ID: "t", Name: "grep", Input: json.RawMessage(`[1,2]`)},
			}}, nil
		},
	}
	p := NewWithMessages(mock, "claude-sonnet", 0)

	_, err := p.Generate(context.Background(), &provider.Request{})

	var pe *provider.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provider.ErrorCodeMalformed, pe.Code)
}
