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

// geminiDialect implements Google's generateContent wire shape. The API key
// is attached as a query parameter rather than a header (§4.1).
type geminiDialect struct {
	httpClient *http.Client
}

func newGeminiDialect() *geminiDialect {
	return &geminiDialect{httpClient: &http.Client{}}
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent          `json:"contents"`
	SystemInstruction *geminiContent           `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig  `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (d *geminiDialect) Call(ctx context.Context, cfg Config, images []Image, userPrompt string, opts CallOptions) (CallResult, error) {
	parts := make([]geminiPart, 0, len(images)+len(opts.Documents)+1)
	for _, img := range images {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: img.MimeType, Data: img.Base64}})
	}
	for _, doc := range opts.Documents {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: "application/pdf", Data: doc.Base64}})
	}
	parts = append(parts, geminiPart{Text: userPrompt})

	genConfig := &geminiGenerationConfig{
		Temperature:     opts.Temperature,
		MaxOutputTokens: opts.MaxTokens,
	}
	if opts.ResponseFormat == ResponseFormatJSON {
		genConfig.ResponseMimeType = "application/json"
	}

	reqBody := geminiRequest{
		Contents:         []geminiContent{{Parts: parts}},
		GenerationConfig: genConfig,
	}
	if opts.System != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: opts.System}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return CallResult{}, fmt.Errorf("%w: encode request: %v", ErrProviderMalformedResponse, err)
	}

	base := ensureGeminiV1beta(cfg.Endpoint)
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, cfg.Model, cfg.APIKey)

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

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return CallResult{}, fmt.Errorf("%w: %v", ErrProviderMalformedResponse, err)
	}
	if parsed.Error != nil {
		return CallResult{}, fmt.Errorf("%w: %s", ErrProviderRejected, truncate(parsed.Error.Message, 200))
	}
	if len(parsed.Candidates) == 0 {
		return CallResult{}, fmt.Errorf("%w: no candidates in response", ErrProviderMalformedResponse)
	}

	var text strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	return CallResult{
		Content: text.String(),
		Usage: Usage{
			InputTokens:  parsed.UsageMetadata.PromptTokenCount,
			OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}

// ensureGeminiV1beta implements the endpoint-resolution rule in §4.3: the
// configured base must end with /v1beta before the generateContent path is
// appended.
func ensureGeminiV1beta(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/v1beta") {
		return base
	}
	return base + "/v1beta"
}
