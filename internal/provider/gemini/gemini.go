// Package gemini implements the provider contract on top of Google's genai SDK.
package gemini

import (
	"context"

	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/google/uuid"
)

// GeminiProvider implements provider.Provider for Google Gemini.
type GeminiProvider struct {
	client          GeminiClient
	modelName       string
	maxOutputTokens int32
	newID           func() string
}

// New creates a new GeminiProvider with the specified client and model.
func New(client GeminiClient, modelName string, maxOutputTokens int) *GeminiProvider {
	return &GeminiProvider{
		client:          client,
		modelName:       modelName,
		maxOutputTokens: int32(maxOutputTokens),
		newID:           uuid.NewString,
	}
}

// Generate sends one reasoning step to the Gemini API.
func (p *GeminiProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	contents := toGeminiContents(req.History)
	config := toGeminiConfig(req.System, p.maxOutputTokens)
	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
	}

	resp, err := p.client.GenerateContent(ctx, p.modelName, contents, config)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, mapGeminiError(err)
	}

	return fromGeminiResponse(resp, p.newID)
}

// Model returns the active model name.
func (p *GeminiProvider) Model() string {
	return p.modelName
}

// ListModels implements provider.ModelLister.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	names, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return names, nil
}
