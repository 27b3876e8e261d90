package settings

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/provider"
)

// TestConnectionRequest is the Settings API's `POST .../test` body (§4.8).
type TestConnectionRequest struct {
	Provider string `json:"provider"`
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model"`
}

// TestConnectionResult is the handler's response shape. Error is non-empty
// only when Ok is false; Detail carries a short, secret-scrubbed snippet of
// the upstream failure.
type TestConnectionResult struct {
	Ok      bool
	Message string
	Error   string
	Detail  string
}

// TestConnection builds the provider's models-probe URL, performs a bounded
// GET, and reports reachability. It never persists anything and never
// forwards request headers into the result.
func TestConnection(ctx context.Context, client *http.Client, req TestConnectionRequest) TestConnectionResult {
	id := provider.ID(req.Provider)
	meta, ok := provider.GetMeta(id)
	if !ok {
		return TestConnectionResult{Error: fmt.Sprintf("unknown provider %q", req.Provider)}
	}

	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = meta.DefaultEndpoint
	}
	if id == provider.Custom && endpoint == "" {
		return TestConnectionResult{Error: "endpoint is required for the custom provider"}
	}
	if meta.RequiresAPIKey && req.APIKey == "" {
		return TestConnectionResult{Error: "apiKey is required for " + req.Provider}
	}

	ctx, cancel := context.WithTimeout(ctx, provider.ProbeTimeout)
	defer cancel()

	url := provider.ModelsProbeEndpoint(id, endpoint, req.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return TestConnectionResult{Error: "failed to build request"}
	}
	for k, v := range provider.BuildAuthHeaders(id, req.APIKey) {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return TestConnectionResult{Error: "Connection failed: " + scrub(err.Error(), req.APIKey)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		reason := "check your API key"
		if resp.StatusCode >= 500 {
			reason = "upstream is unavailable"
		}
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return TestConnectionResult{
			Error:  fmt.Sprintf("Connection failed: server responded with %d — %s.", resp.StatusCode, reason),
			Detail: scrub(strings.TrimSpace(string(snippet)), req.APIKey),
		}
	}

	return TestConnectionResult{Ok: true, Message: "connection succeeded"}
}

// scrub removes the apiKey value from a transport error message; Go's
// net/http errors embed the request URL, which may carry a query-string key
// for providers using AuthQueryKey (Gemini).
func scrub(msg, apiKey string) string {
	if apiKey == "" {
		return msg
	}
	return strings.ReplaceAll(msg, apiKey, "***")
}
