package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ollamaDialect implements the self-hosted Ollama /api/chat wire shape:
// images are inlined per-message rather than as content parts, and
// structured output is requested via a top-level "format" field instead of
// response_format (§9 design notes).
type ollamaDialect struct {
	httpClient *http.Client
}

func newOllamaDialect() *ollamaDialect {
	return &ollamaDialect{httpClient: &http.Client{}}
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error"`
}

func (d *ollamaDialect) Call(ctx context.Context, cfg Config, images []Image, userPrompt string, opts CallOptions) (CallResult, error) {
	imgData := make([]string, 0, len(images))
	for _, img := range images {
		imgData = append(imgData, img.Base64)
	}

	messages := []ollamaMessage{}
	if opts.System != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: opts.System})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: userPrompt, Images: imgData})

	reqBody := ollamaRequest{
		Model:    cfg.Model,
		Messages: messages,
		Stream:   false,
		Options: map[string]any{
			"temperature": opts.Temperature,
		},
	}
	if opts.ResponseFormat == ResponseFormatJSON {
		reqBody.Format = json.RawMessage(`"json"`)
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return CallResult{}, fmt.Errorf("%w: encode request: %v", ErrProviderMalformedResponse, err)
	}

	url := ChatEndpoint(Ollama, cfg.Endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return CallResult{}, fmt.Errorf("%w: build request: %v", ErrProviderUnreachable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return CallResult{}, fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return CallResult{}, fmt.Errorf("%w: read response: %v", ErrProviderUnreachable, err)
	}

	if resp.StatusCode >= 400 {
		return CallResult{}, fmt.Errorf("%w: HTTP %d: %s", ErrProviderRejected, resp.StatusCode, truncate(string(body), 200))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return CallResult{}, fmt.Errorf("%w: %v", ErrProviderMalformedResponse, err)
	}
	if parsed.Error != "" {
		return CallResult{}, fmt.Errorf("%w: %s", ErrProviderRejected, truncate(parsed.Error, 200))
	}

	return CallResult{
		Content: parsed.Message.Content,
		Usage:   Usage{InputTokens: parsed.PromptEvalCount, OutputTokens: parsed.EvalCount},
	}, nil
}
