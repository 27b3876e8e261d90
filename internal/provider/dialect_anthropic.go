package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// anthropicDialect implements the Anthropic Messages API wire shape. Unlike
// the OpenAI-compatible dialect, Anthropic's image/document content blocks
// and auth headers are not expressible through the openai-go SDK, so this
// dialect speaks raw HTTP.
type anthropicDialect struct {
	httpClient *http.Client
}

func newAnthropicDialect() *anthropicDialect {
	return &anthropicDialect{httpClient: &http.Client{}}
}

type anthropicContentBlock struct {
	Type   string                 `json:"type"`
	Text   string                 `json:"text,omitempty"`
	Source *anthropicImageSource  `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (d *anthropicDialect) Call(ctx context.Context, cfg Config, images []Image, userPrompt string, opts CallOptions) (CallResult, error) {
	blocks := make([]anthropicContentBlock, 0, len(images)+len(opts.Documents)+1)
	for _, img := range images {
		blocks = append(blocks, anthropicContentBlock{
			Type:   "image",
			Source: &anthropicImageSource{Type: "base64", MediaType: img.MimeType, Data: img.Base64},
		})
	}
	for _, doc := range opts.Documents {
		blocks = append(blocks, anthropicContentBlock{
			Type:   "document",
			Source: &anthropicImageSource{Type: "base64", MediaType: doc.MimeType, Data: doc.Base64},
		})
	}
	blocks = append(blocks, anthropicContentBlock{Type: "text", Text: userPrompt})

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	reqBody := anthropicRequest{
		Model:     cfg.Model,
		System:    opts.System,
		Messages:  []anthropicMessage{{Role: "user", Content: blocks}},
		MaxTokens: maxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return CallResult{}, fmt.Errorf("%w: encode request: %v", ErrProviderMalformedResponse, err)
	}

	url := ChatEndpoint(Anthropic, cfg.Endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return CallResult{}, fmt.Errorf("%w: build request: %v", ErrProviderUnreachable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range BuildAuthHeaders(Anthropic, cfg.APIKey) {
		httpReq.Header.Set(k, v)
	}

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

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return CallResult{}, fmt.Errorf("%w: %v", ErrProviderMalformedResponse, err)
	}
	if parsed.Error != nil {
		return CallResult{}, fmt.Errorf("%w: %s", ErrProviderRejected, truncate(parsed.Error.Message, 200))
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return CallResult{
		Content: text.String(),
		Usage:   Usage{InputTokens: parsed.Usage.InputTokens, OutputTokens: parsed.Usage.OutputTokens},
	}, nil
}
