package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

// openAICompatDialect serves every provider whose wire shape is the OpenAI
// chat-completions format: openai, openrouter, groq, mistral, ollama-cloud,
// and custom. One openai.Client is built per call so each request can carry
// a different base URL / key (the teacher's Client type bakes these in at
// construction time; the dispatcher instead receives them per-call).
type openAICompatDialect struct{}

func newOpenAICompatDialect() *openAICompatDialect { return &openAICompatDialect{} }

func (d *openAICompatDialect) Call(ctx context.Context, cfg Config, images []Image, userPrompt string, opts CallOptions) (CallResult, error) {
	endpoint := cfg.Endpoint
	if cfg.Provider == OllamaCloud {
		endpoint = ensureOllamaCloudVersion(endpoint)
	}

	clientOpts := []option.RequestOption{
		option.WithBaseURL(endpoint),
		option.WithHeader("HTTP-Referer", "https://artisanclarinets.app"),
		option.WithHeader("X-Title", "Smart Upload Pipeline"),
	}
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}

	client := openai.NewClient(clientOpts...)

	messages := []openai.ChatCompletionMessageParamUnion{}
	if opts.System != "" {
		messages = append(messages, openai.SystemMessage(opts.System))
	}

	contentParts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(images)+1)
	for _, img := range images {
		dataURL := fmt.Sprintf("data:%s;base64,%s", img.MimeType, img.Base64)
		contentParts = append(contentParts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}))
	}
	contentParts = append(contentParts, openai.TextContentPart(userPrompt))
	messages = append(messages, openai.UserMessage(contentParts))

	maxTokens := int64(opts.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := openai.ChatCompletionNewParams{
		Model:       cfg.Model,
		Messages:    messages,
		MaxTokens:   param.NewOpt(maxTokens),
		Temperature: param.NewOpt(opts.Temperature),
	}

	if opts.ResponseFormat == ResponseFormatJSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	applyOpenAIModelParams(&params, opts.ModelParams)

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return CallResult{}, classifyOpenAICompatError(err)
	}
	if len(resp.Choices) == 0 {
		return CallResult{}, fmt.Errorf("%w: no choices in response", ErrProviderMalformedResponse)
	}

	return CallResult{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}

// applyOpenAIModelParams maps the documented subset of free-form model
// parameters onto the typed SDK fields. Unknown keys are ignored: the SDK's
// request struct has no passthrough escape hatch, so anything outside this
// documented subset cannot be forwarded for this dialect.
func applyOpenAIModelParams(params *openai.ChatCompletionNewParams, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return
	}
	if v, ok := m["top_p"].(float64); ok {
		params.TopP = param.NewOpt(v)
	}
	if v, ok := m["frequency_penalty"].(float64); ok {
		params.FrequencyPenalty = param.NewOpt(v)
	}
	if v, ok := m["presence_penalty"].(float64); ok {
		params.PresencePenalty = param.NewOpt(v)
	}
}

// classifyOpenAICompatError maps an openai-go error onto the dispatcher's
// sentinel error kinds so callers can use errors.Is uniformly across
// dialects.
func classifyOpenAICompatError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 400 {
			return fmt.Errorf("%w: HTTP %d: %s", ErrProviderRejected, apiErr.StatusCode, truncate(apiErr.Message, 200))
		}
	}
	var netErr *http.ProtocolError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var versionSegmentPattern = regexp.MustCompile(`/v\d+(/|$)`)

// ensureOllamaCloudVersion implements the endpoint-resolution rule in §4.3:
// an ollama-cloud base must carry a /v<N> version segment, mirroring
// ensureGeminiV1beta but inserting /v1 rather than a fixed Gemini path.
func ensureOllamaCloudVersion(base string) string {
	base = strings.TrimRight(base, "/")
	if versionSegmentPattern.MatchString(base + "/") {
		return base
	}
	return base + "/v1"
}
