package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient defines the subset of the Gemini API the provider uses.
type GeminiClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

	// ListModels returns the names of chat-capable gemini models.
	ListModels(ctx context.Context) ([]string, error)
}

// RealGeminiClient wraps the official SDK client to satisfy GeminiClient.
type RealGeminiClient struct {
	client *genai.Client
}

// NewClient creates the SDK client for the Gemini API backend.
func NewClient(ctx context.Context, apiKey string) (*RealGeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &RealGeminiClient{client: client}, nil
}

func (c *RealGeminiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

// ListModels filters to gemini-* models, excluding embedding, image, audio, live and robotic variants.
func (c *RealGeminiClient) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	for model, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(model.Name, "models/gemini-") {
			continue
		}
		if strings.Contains(model.Name, "embedding") ||
			strings.Contains(model.Name, "image") ||
			strings.Contains(model.Name, "audio") ||
			strings.Contains(model.Name, "live") ||
			strings.Contains(model.Name, "robotic") {
			continue
		}
		names = append(names, strings.TrimPrefix(model.Name, "models/"))
	}
	return names, nil
}
