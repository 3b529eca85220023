package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/terminus/internal/orchestrator/models"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/Cyclone1070/terminus/internal/tool"
	"google.golang.org/genai"
)

// toGeminiContents converts history to Gemini Content format. Empty messages are skipped.
func toGeminiContents(history []models.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		if content := messageToGeminiContent(msg); content != nil {
			contents = append(contents, content)
		}
	}
	return contents
}

// messageToGeminiContent converts a single message. Tool results travel in a user turn.
func messageToGeminiContent(msg models.Message) *genai.Content {
	role := "user"
	if msg.Role == models.RoleAssistant {
		role = "model"
	}

	parts := make([]*genai.Part, 0, 1+len(msg.ToolCalls)+len(msg.ToolResults))

	if msg.Content != "" {
		parts = append(parts, genai.NewPartFromText(msg.Content))
	}

	for _, call := range msg.ToolCalls {
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				Name: call.Name,
				Args: call.Args,
			},
		})
	}

	for _, result := range msg.ToolResults {
		content := result.Content
		if result.IsError() && !strings.HasPrefix(content, "Error") {
			content = fmt.Sprintf("Error: %s", content)
		}
		parts = append(parts, &genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				Name: result.Name,
				Response: map[string]any{
					"content": content,
				},
			},
		})
	}

	if len(parts) == 0 {
		return nil
	}

	return &genai.Content{Role: role, Parts: parts}
}

func toGeminiConfig(system string, maxOutputTokens int32) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(system)},
		}
	}
	if maxOutputTokens > 0 {
		config.MaxOutputTokens = maxOutputTokens
	}
	return config
}

// defaultSafetySettings turns off blocking; tool output routinely trips the default filters.
func defaultSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHateSpeech,
		genai.HarmCategoryDangerousContent,
		genai.HarmCategoryHarassment,
		genai.HarmCategorySexuallyExplicit,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockThresholdOff})
	}
	return settings
}

// toGeminiTools converts the tool catalog to a single Gemini tool with one declaration per entry.
func toGeminiTools(descs []tool.Descriptor) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(descs))
	for _, d := range descs {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil {
			fd.Parameters = toGeminiSchema(d.Parameters)
		}
		decls = append(decls, fd)
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func toGeminiSchema(s *tool.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	if s.Items != nil {
		out.Items = toGeminiSchema(s.Items)
	}
	return out
}

func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts the first candidate. Gemini may omit call IDs; newID fills them.
func fromGeminiResponse(resp *genai.GenerateContentResponse, newID func() string) (*provider.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeMalformed,
			Message: "no candidates in response",
		}
	}

	candidate := resp.Candidates[0]

	switch candidate.FinishReason {
	case genai.FinishReasonSafety:
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeContentBlocked,
			Message: "content blocked by safety filters",
		}
	case genai.FinishReasonMaxTokens:
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeContextLength,
			Message: "response truncated due to max tokens",
		}
	}

	out := &provider.Response{}
	if candidate.Content != nil {
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			if part.FunctionCall != nil {
				id := part.FunctionCall.ID
				if id == "" {
					id = newID()
				}
				out.ToolCalls = append(out.ToolCalls, models.ToolCall{
					ID:   id,
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				})
				continue
			}
			text.WriteString(part.Text)
		}
		out.Text = text.String()
	}

	if resp.UsageMetadata != nil {
		out.Usage = provider.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return out, nil
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return provider.FromStatus(apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return provider.FromStatus(apiErrPtr.Code, apiErrPtr.Message, err)
	}

	return provider.Normalize(err)
}
