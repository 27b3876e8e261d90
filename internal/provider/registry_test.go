package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/provider"
)

func TestGetMeta_KnownProviders(t *testing.T) {
	for _, id := range []provider.ID{
		provider.Ollama, provider.OpenAI, provider.Anthropic, provider.Gemini,
		provider.OpenRouter, provider.Mistral, provider.Groq, provider.OllamaCloud, provider.Custom,
	} {
		meta, ok := provider.GetMeta(id)
		require.True(t, ok, "expected %s to be registered", id)
		assert.Equal(t, id, meta.ID)
	}
}

func TestGetMeta_Unknown(t *testing.T) {
	_, ok := provider.GetMeta("does-not-exist")
	assert.False(t, ok)
}

func TestBuildAuthHeaders_Bearer(t *testing.T) {
	h := provider.BuildAuthHeaders(provider.OpenAI, "sk-test")
	assert.Equal(t, "Bearer sk-test", h["Authorization"])
}

func TestBuildAuthHeaders_AnthropicXAPIKey(t *testing.T) {
	h := provider.BuildAuthHeaders(provider.Anthropic, "ant-key")
	assert.Equal(t, "ant-key", h["x-api-key"])
	assert.Equal(t, "2023-06-01", h["anthropic-version"])
}

func TestBuildAuthHeaders_OllamaNone(t *testing.T) {
	h := provider.BuildAuthHeaders(provider.Ollama, "")
	assert.Empty(t, h)
}

func TestChatEndpoint_PerDialect(t *testing.T) {
	assert.Equal(t, "http://localhost:11434/api/chat", provider.ChatEndpoint(provider.Ollama, "http://localhost:11434"))
	assert.Equal(t, "https://api.anthropic.com/v1/messages", provider.ChatEndpoint(provider.Anthropic, "https://api.anthropic.com"))
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", provider.ChatEndpoint(provider.OpenAI, "https://api.openai.com/v1"))
}

func TestChatEndpoint_TrimsTrailingSlash(t *testing.T) {
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", provider.ChatEndpoint(provider.OpenAI, "https://api.openai.com/v1/"))
}

func TestModelsProbeEndpoint(t *testing.T) {
	assert.Equal(t, "http://localhost:11434/api/tags", provider.ModelsProbeEndpoint(provider.Ollama, "http://localhost:11434", ""))
	assert.Equal(t, "https://api.openai.com/v1/models", provider.ModelsProbeEndpoint(provider.OpenAI, "https://api.openai.com/v1", "k"))
	assert.Equal(t, "https://api.anthropic.com/v1/models", provider.ModelsProbeEndpoint(provider.Anthropic, "https://api.anthropic.com", "k"))
	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models?key=k",
		provider.ModelsProbeEndpoint(provider.Gemini, "https://generativelanguage.googleapis.com", "k"))
}

func TestModelsProbeEndpoint_GeminiAlreadyVersioned(t *testing.T) {
	got := provider.ModelsProbeEndpoint(provider.Gemini, "https://generativelanguage.googleapis.com/v1beta", "k")
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models?key=k", got)
}
