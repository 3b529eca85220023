// Package factory builds a provider.Provider from a model name.
//
// The backend is chosen by prefix: "claude" or "anthropic:" selects Anthropic,
// "gpt-", "o1", "o3", "o4" or "openai:" select OpenAI, "ollama:" selects a local
// Ollama server, and everything else (including "gemini:" and "google-gla:") goes
// to Gemini.
package factory

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/terminus/internal/config"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/Cyclone1070/terminus/internal/provider/anthropic"
	"github.com/Cyclone1070/terminus/internal/provider/gemini"
	"github.com/Cyclone1070/terminus/internal/provider/openai"
)

// Backend identifies a provider implementation.
type Backend string

const (
	BackendGemini    Backend = "gemini"
	BackendOpenAI    Backend = "openai"
	BackendOllama    Backend = "ollama"
	BackendAnthropic Backend = "anthropic"
)

var explicitPrefixes = []struct {
	prefix  string
	backend Backend
}{
	{"google-gla:", BackendGemini},
	{"google:", BackendGemini},
	{"gemini:", BackendGemini},
	{"openai:", BackendOpenAI},
	{"ollama:", BackendOllama},
	{"anthropic:", BackendAnthropic},
}

// ParseModel splits a model name into its backend and the name the backend expects.
func ParseModel(name string) (Backend, string) {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)
	for _, p := range explicitPrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.backend, name[len(p.prefix):]
		}
	}

	switch {
	case strings.HasPrefix(lower, "claude"):
		return BackendAnthropic, name
	case strings.HasPrefix(lower, "gpt-"),
		strings.HasPrefix(lower, "o1"),
		strings.HasPrefix(lower, "o3"),
		strings.HasPrefix(lower, "o4"):
		return BackendOpenAI, name
	default:
		return BackendGemini, name
	}
}

// Factory holds the settings every backend needs.
type Factory struct {
	cfg *config.Config

	newGeminiClient func(ctx context.Context, apiKey string) (gemini.GeminiClient, error)
}

// New creates a Factory over the loaded configuration.
func New(cfg *config.Config) *Factory {
	return &Factory{
		cfg: cfg,
		newGeminiClient: func(ctx context.Context, apiKey string) (gemini.GeminiClient, error) {
			c, err := gemini.NewClient(ctx, apiKey)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}
}

// Build returns a provider for the named model.
func (f *Factory) Build(ctx context.Context, model string) (provider.Provider, error) {
	backend, name := ParseModel(model)
	if name == "" {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeConfig, Message: fmt.Sprintf("model name %q is empty", model)}
	}
	maxTokens := f.cfg.Provider.MaxOutputTokens

	switch backend {
	case BackendAnthropic:
		p, err := anthropic.New(anthropic.Config{
			APIKey:          f.cfg.Credential(config.AnthropicAPIKey),
			Model:           name,
			MaxOutputTokens: maxTokens,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendOpenAI:
		return newOpenAI(openai.Config{
			APIKey:          f.cfg.Credential(config.OpenAIAPIKey),
			Model:           name,
			MaxOutputTokens: maxTokens,
		})
	case BackendOllama:
		baseURL := f.cfg.Provider.OllamaBaseURL
		if baseURL == "" {
			baseURL = openai.DefaultOllamaBaseURL
		}
		// Ollama ignores the key but the SDK requires one.
		return newOpenAI(openai.Config{
			APIKey:          "ollama",
			BaseURL:         baseURL,
			Model:           name,
			MaxOutputTokens: maxTokens,
		})
	default:
		key := f.cfg.Credential(config.GeminiAPIKey)
		if key == "" {
			return nil, &provider.ProviderError{Code: provider.ErrorCodeConfig, Message: "GEMINI_API_KEY is not set"}
		}
		client, err := f.newGeminiClient(ctx, key)
		if err != nil {
			return nil, &provider.ProviderError{Code: provider.ErrorCodeConfig, Message: "create gemini client", Underlying: err}
		}
		return gemini.New(client, name, maxTokens), nil
	}
}

func newOpenAI(cfg openai.Config) (provider.Provider, error) {
	p, err := openai.New(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}
