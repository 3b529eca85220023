package factory

import (
	"context"
	"errors"
	"testing"

	"github.com/Cyclone1070/terminus/internal/config"
	"github.com/Cyclone1070/terminus/internal/provider"
	"github.com/Cyclone1070/terminus/internal/provider/anthropic"
	"github.com/Cyclone1070/terminus/internal/provider/gemini"
	"github.com/Cyclone1070/terminus/internal/provider/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModel(t *testing.T) {
	tests := []struct {
		in      string
		backend Backend
		name    string
	}{
		{"gemini-2.0-flash", BackendGemini, "gemini-2.0-flash"},
		{"google-gla:gemini-2.0-flash-exp", BackendGemini, "gemini-2.0-flash-exp"},
		{"gpt-4o", BackendOpenAI, "gpt-4o"},
		{"o3-mini", BackendOpenAI, "o3-mini"},
		{"openai:custom-model", BackendOpenAI, "custom-model"},
		{"ollama:llama3.1", BackendOllama, "llama3.1"},
		{"claude-sonnet-4", BackendAnthropic, "claude-sonnet-4"},
		{"Anthropic:claude-opus", BackendAnthropic, "claude-opus"},
		{"  some-model ", BackendGemini, "some-model"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			backend, name := ParseModel(tt.in)
			assert.Equal(t, tt.backend, backend)
			assert.Equal(t, tt.name, name)
		})
	}
}

type stubGeminiClient struct {
	gemini.GeminiClient
}

func testConfig(env map[string]string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Env = env
	return cfg
}

func TestBuild_SelectsBackend(t *testing.T) {
	f := New(testConfig(map[string]string{
		config.GeminiAPIKey:    "g",
		config.OpenAIAPIKey:    "o",
		config.AnthropicAPIKey: "a",
	}))
	var gotKey string
	f.newGeminiClient = func(ctx context.Context, apiKey string) (gemini.GeminiClient, error) {
		gotKey = apiKey
		return stubGeminiClient{}, nil
	}

	p, err := f.Build(context.Background(), "gemini-2.0-flash")
	require.NoError(t, err)
	assert.IsType(t, &gemini.GeminiProvider{}, p)
	assert.Equal(t, "gemini-2.0-flash", p.Model())
	assert.Equal(t, "g", gotKey)

	p, err = f.Build(context.Background(), "gpt-4o")
	require.NoError(t, err)
	assert.IsType(t, &openai.OpenAIProvider{}, p)

	p, err = f.Build(context.Background(), "claude-sonnet-4")
	require.NoError(t, err)
	assert.IsType(t, &anthropic.AnthropicProvider{}, p)
}

func TestBuild_OllamaNeedsNoKey(t *testing.T) {
	f := New(testConfig(map[string]string{}))

	p, err := f.Build(context.Background(), "ollama:llama3.1")

	require.NoError(t, err)
	assert.Equal(t, "llama3.1", p.Model())
}

func TestBuild_MissingCredentials(t *testing.T) {
	f := New(testConfig(map[string]string{}))

	for _, model := range []string{"gemini-2.0-flash", "gpt-4o", "claude-sonnet-4"} {
		t.Run(model, func(t *testing.T) {
			_, err := f.Build(context.Background(), model)

			var pe *provider.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, provider.ErrorCodeConfig, pe.Code)
		})
	}
}

func TestBuild_GeminiClientError(t *testing.T) {
	f := New(testConfig(map[string]string{config.GeminiAPIKey: "g"}))
	f.newGeminiClient = func(ctx context.Context, apiKey string) (gemini.GeminiClient, error) {
		return nil, errors.New("boom")
	}

	_, err := f.Build(context.Background(), "gemini-2.0-flash")

	assert.ErrorIs(t, err, provider.ErrProviderUnavailable)
}

func TestBuild_EmptyName(t *testing.T) {
	f := New(testConfig(nil))

	_, err := f.Build(context.Background(), "ollama:")

	assert.ErrorIs(t, err, provider.ErrProviderUnavailable)
}
