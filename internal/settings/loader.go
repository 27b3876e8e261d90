package settings

import (
	"context"
	"encoding/json"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/processor"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/provider"
)

var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Load reads the fixed smart_upload_* keys from store, falls back to
// environment variables and then hardcoded defaults, validates the result,
// and returns a frozen RuntimeConfig. Secrets are read in plaintext here;
// masking only happens at the HTTP boundary.
func Load(ctx context.Context, store Store) (model.RuntimeConfig, error) {
	raw := map[Key]string{}
	for key := range AllKeys {
		raw[key] = resolve(ctx, store, key)
	}

	cfg := defaults()
	cfg.Provider = orDefault(raw[KeyProvider], cfg.Provider)
	if ep := raw[KeyEndpoint]; ep != "" {
		cfg.Endpoint = ep
	} else if def, ok := provider.DefaultEndpoint(provider.ID(cfg.Provider)); ok {
		cfg.Endpoint = def
	}
	cfg.VisionModel = orDefault(raw[KeyVisionModel], cfg.VisionModel)
	cfg.VerificationModel = orDefault(raw[KeyVerificationModel], cfg.VerificationModel)
	cfg.APIKey = secretFor(provider.ID(cfg.Provider), raw)
	cfg.SendFullPdfToLlm = parseBool(raw[KeySendFullPDFToLLM], cfg.SendFullPdfToLlm)
	cfg.AllowedMimeTypes = parseStringArray(raw[KeyAcceptedMimeTypes], cfg.AllowedMimeTypes)
	cfg.MaxFileSizeBytes = parseInt64(raw[KeyMaxFileSizeBytes], cfg.MaxFileSizeBytes)
	cfg.MaxPagesPerPart = parseInt(raw[KeyMaxPagesPerPart], cfg.MaxPagesPerPart)
	cfg.SkipParseThreshold = parseFloat(raw[KeySkipParseThreshold], cfg.SkipParseThreshold)
	cfg.AutoApproveThreshold = parseFloat(raw[KeyAutoApproveThreshold], cfg.AutoApproveThreshold)
	cfg.AutonomousApprovalThreshold = parseFloat(raw[KeyAutonomousApprovalThreshold], cfg.AutonomousApprovalThreshold)
	cfg.EnableFullyAutonomousMode = parseBool(raw[KeyEnableFullyAutonomousMode], cfg.EnableFullyAutonomousMode)
	cfg.BudgetMaxLlmCalls = parseInt(raw[KeyBudgetMaxLLMCalls], cfg.BudgetMaxLlmCalls)
	cfg.BudgetMaxInputTokens = parseInt(raw[KeyBudgetMaxInputTokens], cfg.BudgetMaxInputTokens)
	cfg.PromptVersion = orDefault(raw[KeyPromptVersion], cfg.PromptVersion)
	cfg.VisionModelParams = rawOrEmptyObject(raw[KeyVisionModelParams])
	cfg.VerificationModelParams = rawOrEmptyObject(raw[KeyVerificationModelParams])
	cfg.VisionSystemPrompt = orDefault(raw[KeyVisionPrompt], cfg.VisionSystemPrompt)
	cfg.VerificationSystemPrompt = orDefault(raw[KeyVerificationPrompt], cfg.VerificationSystemPrompt)
	cfg.HeaderLabelPrompt = orDefault(raw[KeyHeaderLabelPrompt], cfg.HeaderLabelPrompt)

	if errs := Validate(cfg); len(errs) > 0 {
		return model.RuntimeConfig{}, errs
	}
	return cfg, nil
}

func defaults() model.RuntimeConfig {
	return model.RuntimeConfig{
		Provider:                    string(provider.Ollama),
		Endpoint:                    "http://localhost:11434",
		VisionModel:                 "llava",
		VerificationModel:           "llava",
		SendFullPdfToLlm:            false,
		AllowedMimeTypes:            []string{"application/pdf"},
		MaxFileSizeBytes:            50 * 1024 * 1024,
		MaxPagesPerPart:             40,
		SkipParseThreshold:          40,
		AutoApproveThreshold:        70,
		AutonomousApprovalThreshold: 90,
		EnableFullyAutonomousMode:   false,
		BudgetMaxLlmCalls:           20,
		BudgetMaxInputTokens:        200_000,
		PromptVersion:               "1.0.0",
		VisionSystemPrompt:          processor.DefaultSystemPromptVisionExtractor,
		VerificationSystemPrompt:    processor.DefaultSystemPromptVerification,
		HeaderLabelPrompt:           processor.DefaultHeaderLabelPrompt,
	}
}

// ResetPrompts implements `POST .../reset-prompts` (§4.8): reset the three
// prompt-shaped keys to their compiled-in defaults and return the new
// values, without touching any other setting.
func ResetPrompts(ctx context.Context, store Store) (map[string]string, error) {
	d := defaults()
	now := map[Key]string{
		KeyVisionPrompt:       d.VisionSystemPrompt,
		KeyVerificationPrompt: d.VerificationSystemPrompt,
		KeyPromptVersion:      d.PromptVersion,
	}
	updatedAt := time.Now().UTC()
	updates := make([]Setting, 0, len(now))
	for key, value := range now {
		updates = append(updates, Setting{Key: string(key), Value: value, UpdatedAt: updatedAt})
	}
	if _, err := store.Upsert(ctx, updates); err != nil {
		return nil, err
	}
	return map[string]string{
		"visionSystemPrompt":       d.VisionSystemPrompt,
		"verificationSystemPrompt": d.VerificationSystemPrompt,
		"promptVersion":            d.PromptVersion,
	}, nil
}

func resolve(ctx context.Context, store Store, key Key) string {
	if store != nil {
		if s, ok, err := store.Get(ctx, string(key)); err == nil && ok && s.Value != "" {
			return s.Value
		}
	}
	return os.Getenv(EnvVarName(key))
}

func secretFor(p provider.ID, raw map[Key]string) string {
	key, ok := SecretKeyFor(p)
	if !ok {
		return ""
	}
	return raw[key]
}

// SecretKeyFor returns the settings key holding the API key for provider p,
// and false if p takes no secret (e.g. a purely local provider).
func SecretKeyFor(p provider.ID) (Key, bool) {
	switch p {
	case provider.OpenAI:
		return KeyOpenAIAPIKey, true
	case provider.Anthropic:
		return KeyAnthropicAPIKey, true
	case provider.OpenRouter:
		return KeyOpenRouterAPIKey, true
	case provider.Gemini:
		return KeyGeminiAPIKey, true
	case provider.Custom:
		return KeyCustomAPIKey, true
	case provider.Mistral:
		return KeyMistralAPIKey, true
	case provider.Groq:
		return KeyGroqAPIKey, true
	case provider.OllamaCloud:
		return KeyOllamaCloudAPIKey, true
	default:
		return "", false
	}
}

// Validate implements the seven enumerated checks in §4.3, returning every
// violation rather than stopping at the first.
func Validate(cfg model.RuntimeConfig) model.ConfigErrors {
	var errs model.ConfigErrors

	meta, known := provider.GetMeta(provider.ID(cfg.Provider))
	if !known {
		errs = append(errs, model.NewConfigError("provider", "not a registered provider"))
	}
	if known && !meta.IsLocal && cfg.APIKey == "" {
		errs = append(errs, model.NewConfigError("apiKey", "non-local providers require a non-empty API key"))
	}
	if cfg.Provider == string(provider.Custom) && cfg.Endpoint == "" {
		errs = append(errs, model.NewConfigError("endpoint", "custom provider requires an endpoint"))
	}

	if !(cfg.SkipParseThreshold <= cfg.AutoApproveThreshold && cfg.AutoApproveThreshold <= cfg.AutonomousApprovalThreshold) {
		errs = append(errs, model.NewConfigError("thresholds", "skipParseThreshold <= autoApproveThreshold <= autonomousApprovalThreshold must hold"))
	}
	for name, v := range map[string]float64{
		"skipParseThreshold": cfg.SkipParseThreshold, "autoApproveThreshold": cfg.AutoApproveThreshold,
		"autonomousApprovalThreshold": cfg.AutonomousApprovalThreshold,
	} {
		if v < 0 || v > 100 {
			errs = append(errs, model.NewConfigError(name, "must be within [0,100]"))
		}
	}

	if !isValidJSONObject(cfg.VisionModelParams) {
		errs = append(errs, model.NewConfigError("visionModelParams", "must be a valid JSON object"))
	}
	if !isValidJSONObject(cfg.VerificationModelParams) {
		errs = append(errs, model.NewConfigError("verificationModelParams", "must be a valid JSON object"))
	}

	for _, mt := range cfg.AllowedMimeTypes {
		if mt == "" {
			errs = append(errs, model.NewConfigError("acceptedMimeTypes", "entries must be non-empty strings"))
			break
		}
	}

	if !semverPattern.MatchString(cfg.PromptVersion) {
		errs = append(errs, model.NewConfigError("promptVersion", "must be semver-shaped (x.y.z)"))
	}

	return errs
}

func isValidJSONObject(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var v map[string]any
	return json.Unmarshal(raw, &v) == nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func rawOrEmptyObject(v string) json.RawMessage {
	if v == "" {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(v)
}

func parseBool(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func parseInt(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func parseInt64(v string, def int64) int64 {
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func parseFloat(v string, def float64) float64 {
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func parseStringArray(v string, def []string) []string {
	if v == "" {
		return def
	}
	var out []string
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return def
	}
	return out
}
