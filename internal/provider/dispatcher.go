package provider

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Sentinel errors of the provider layer. CallVisionModel returns the last
// four; ErrBudgetExhausted is never returned by it and is used by the
// processor as the cause when a session's budget is spent. They are
// deliberately sentinel values (not typed structs) so callers can use
// errors.Is; ProviderError in the model package carries the scrubbed detail
// for logging/surfacing.
var (
	ErrBudgetExhausted        = errors.New("provider: budget exhausted")
	ErrProviderUnreachable    = errors.New("provider: unreachable")
	ErrProviderRejected       = errors.New("provider: rejected request")
	ErrProviderMalformedResponse = errors.New("provider: malformed response")
	ErrCancelled              = errors.New("provider: cancelled")
)

const (
	// ProbeTimeout bounds connectivity probes (test-connection, §6).
	ProbeTimeout = 10 * time.Second
	// DefaultInferenceTimeout bounds a vision/chat model call.
	DefaultInferenceTimeout = 120 * time.Second
)

// Image is one attached bitmap for a multimodal request.
type Image struct {
	MimeType string
	Base64   string
	Label    string // optional, e.g. "page 3"
}

// Document is a native PDF attachment, only used when the provider
// advertises SupportsPdfInput and the caller enables it.
type Document struct {
	MimeType string
	Base64   string
}

// ResponseFormat hints how the model should shape its reply.
type ResponseFormat string

const (
	ResponseFormatText ResponseFormat = "text"
	ResponseFormatJSON ResponseFormat = "json"
)

// CallOptions configures one CallVisionModel invocation.
type CallOptions struct {
	System         string
	ResponseFormat ResponseFormat
	MaxTokens      int
	Temperature    float64
	ModelParams    json.RawMessage // opaque, merged into the provider payload
	Documents      []Document
	Timeout        time.Duration // 0 => DefaultInferenceTimeout
}

// Usage reports token accounting, when the provider returns it.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// CallResult is CallVisionModel's return value.
type CallResult struct {
	Content string
	Usage   Usage
}

// Config is the subset of model.RuntimeConfig the dispatcher needs. Kept
// separate from model.RuntimeConfig to avoid an import cycle (model is a
// leaf package); internal/processor converts at the call site.
type Config struct {
	Provider    ID
	Model       string
	Endpoint    string
	APIKey      string
}

// dialect is implemented once per wire shape (§4.2).
type dialect interface {
	Call(ctx context.Context, cfg Config, images []Image, userPrompt string, opts CallOptions) (CallResult, error)
}

// Dispatcher is the single entry point for vision-model calls.
type Dispatcher struct {
	dialects map[Dialect]dialect
}

// NewDispatcher builds a dispatcher wired to the default dialect
// implementations. Tests may substitute dialects via WithDialect.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		dialects: map[Dialect]dialect{
			DialectOpenAICompat: newOpenAICompatDialect(),
			DialectAnthropic:    newAnthropicDialect(),
			DialectGemini:       newGeminiDialect(),
			DialectOllama:       newOllamaDialect(),
		},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDialect overrides the implementation used for a wire dialect. Used by
// tests to inject a fake transport.
func WithDialect(dl Dialect, impl dialect) DispatcherOption {
	return func(d *Dispatcher) { d.dialects[dl] = impl }
}

// CallVisionModel serializes a request in cfg.Provider's wire dialect,
// attaches auth, sends it, and extracts the textual response. Budget
// accounting (the pre-send Reserve check) is the caller's responsibility —
// the dispatcher does not know about sessions.
func (d *Dispatcher) CallVisionModel(ctx context.Context, cfg Config, images []Image, userPrompt string, opts CallOptions) (CallResult, error) {
	meta, ok := GetMeta(cfg.Provider)
	if !ok {
		return CallResult{}, errors.New("provider: unknown provider " + string(cfg.Provider))
	}

	impl, ok := d.dialects[meta.Dialect]
	if !ok {
		return CallResult{}, errors.New("provider: unsupported dialect " + string(meta.Dialect))
	}

	if len(opts.Documents) > 0 && !meta.SupportsPdfInput {
		opts.Documents = nil
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultInferenceTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := impl.Call(callCtx, cfg, images, userPrompt, opts)
	if err != nil {
		if errors.Is(callCtx.Err(), context.Canceled) {
			return CallResult{}, ErrCancelled
		}
		return CallResult{}, err
	}
	return result, nil
}
