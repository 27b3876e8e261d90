// Package provider implements the Provider Registry and Provider Dispatcher:
// a static capability table over the supported LLM vision backends, and a
// single dispatch entry point that shapes a request into each backend's wire
// dialect, attaches auth, and extracts the textual response.
package provider

import "strings"

// Dialect identifies the wire shape a provider expects.
type Dialect string

const (
	DialectOpenAICompat Dialect = "openai_compat"
	DialectAnthropic    Dialect = "anthropic_native"
	DialectGemini       Dialect = "gemini_native"
	DialectOllama       Dialect = "ollama_native"
)

// AuthScheme identifies how credentials are attached to a request.
type AuthScheme string

const (
	AuthBearer    AuthScheme = "bearer"
	AuthAPIKeyHdr AuthScheme = "x-api-key"
	AuthQueryKey  AuthScheme = "query"
	AuthNone      AuthScheme = "none"
)

// ID identifies one supported provider.
type ID string

const (
	Ollama      ID = "ollama"
	OpenAI      ID = "openai"
	Anthropic   ID = "anthropic"
	Gemini      ID = "gemini"
	OpenRouter  ID = "openrouter"
	Mistral     ID = "mistral"
	Groq        ID = "groq"
	OllamaCloud ID = "ollama-cloud"
	Custom      ID = "custom"
)

// Meta describes a provider's capabilities and wiring.
type Meta struct {
	ID                ID
	Dialect           Dialect
	DefaultEndpoint   string
	RequiresAPIKey    bool
	SupportsPdfInput  bool
	AuthScheme        AuthScheme
	AnthropicVersion  string // only meaningful when AuthScheme == AuthAPIKeyHdr
	IsLocal           bool   // ollama / custom: no cloud credential requirement
}

// registry is the static provider table (§4.1). Keyed by ID.
var registry = map[ID]Meta{
	Ollama: {
		ID: Ollama, Dialect: DialectOllama, DefaultEndpoint: "http://localhost:11434",
		RequiresAPIKey: false, SupportsPdfInput: false, AuthScheme: AuthNone, IsLocal: true,
	},
	OpenAI: {
		ID: OpenAI, Dialect: DialectOpenAICompat, DefaultEndpoint: "https://api.openai.com/v1",
		RequiresAPIKey: true, SupportsPdfInput: false, AuthScheme: AuthBearer,
	},
	Anthropic: {
		ID: Anthropic, Dialect: DialectAnthropic, DefaultEndpoint: "https://api.anthropic.com",
		RequiresAPIKey: true, SupportsPdfInput: true, AuthScheme: AuthAPIKeyHdr, AnthropicVersion: "2023-06-01",
	},
	Gemini: {
		ID: Gemini, Dialect: DialectGemini, DefaultEndpoint: "https://generativelanguage.googleapis.com",
		RequiresAPIKey: true, SupportsPdfInput: true, AuthScheme: AuthQueryKey,
	},
	OpenRouter: {
		ID: OpenRouter, Dialect: DialectOpenAICompat, DefaultEndpoint: "https://openrouter.ai/api/v1",
		RequiresAPIKey: true, SupportsPdfInput: false, AuthScheme: AuthBearer,
	},
	Mistral: {
		ID: Mistral, Dialect: DialectOpenAICompat, DefaultEndpoint: "https://api.mistral.ai/v1",
		RequiresAPIKey: true, SupportsPdfInput: false, AuthScheme: AuthBearer,
	},
	Groq: {
		ID: Groq, Dialect: DialectOpenAICompat, DefaultEndpoint: "https://api.groq.com/openai/v1",
		RequiresAPIKey: true, SupportsPdfInput: false, AuthScheme: AuthBearer,
	},
	OllamaCloud: {
		ID: OllamaCloud, Dialect: DialectOpenAICompat, DefaultEndpoint: "https://ollama.com/v1",
		RequiresAPIKey: true, SupportsPdfInput: false, AuthScheme: AuthBearer,
	},
	Custom: {
		ID: Custom, Dialect: DialectOpenAICompat, DefaultEndpoint: "",
		RequiresAPIKey: false, SupportsPdfInput: false, AuthScheme: AuthBearer, IsLocal: true,
	},
}

// GetMeta looks up a provider's metadata. ok is false for unknown providers.
func GetMeta(id ID) (Meta, bool) {
	m, ok := registry[ID(strings.ToLower(string(id)))]
	return m, ok
}

// DefaultEndpoint returns the provider's default base endpoint.
func DefaultEndpoint(id ID) (string, bool) {
	m, ok := GetMeta(id)
	return m.DefaultEndpoint, ok
}

// AllIDs returns the registered provider identifiers, for validation and
// admin UI population.
func AllIDs() []ID {
	ids := make([]ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}

// Headers is a small ordered set of HTTP headers to attach to a request.
type Headers map[string]string

// BuildAuthHeaders returns the authorization headers for id given the
// resolved API key (empty string if the provider needs none).
func BuildAuthHeaders(id ID, apiKey string) Headers {
	m, ok := GetMeta(id)
	if !ok {
		return Headers{}
	}
	switch m.AuthScheme {
	case AuthBearer:
		return Headers{"Authorization": "Bearer " + apiKey}
	case AuthAPIKeyHdr:
		return Headers{"x-api-key": apiKey, "anthropic-version": m.AnthropicVersion}
	default:
		return Headers{}
	}
}

// ChatEndpoint appends the dialect-specific chat path to base.
func ChatEndpoint(id ID, base string) string {
	m, ok := GetMeta(id)
	base = strings.TrimRight(base, "/")
	if !ok {
		return base + "/chat/completions"
	}
	switch m.Dialect {
	case DialectOllama:
		return base + "/api/chat"
	case DialectAnthropic:
		return base + "/v1/messages"
	default:
		return base + "/chat/completions"
	}
}

// ModelsProbeEndpoint builds the URL used by the Settings API test-connection
// operation (§6 "Provider models-probe endpoints").
func ModelsProbeEndpoint(id ID, base, apiKey string) string {
	base = strings.TrimRight(base, "/")
	switch id {
	case Ollama, OllamaCloud:
		if id == Ollama {
			return base + "/api/tags"
		}
		return base + "/models"
	case OpenAI:
		return base + "/models"
	case Anthropic:
		return base + "/v1/models"
	case Gemini:
		base = strings.TrimSuffix(base, "/v1beta")
		return base + "/v1beta/models?key=" + apiKey
	default:
		return base + "/models"
	}
}
