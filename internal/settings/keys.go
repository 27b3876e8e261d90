// Package settings implements the Configuration Loader (§4.3) and the
// business logic backing the Settings API (§4.8): reading the persistent
// store, overlaying environment overrides, validating combinations, and
// merging mask-preserving updates.
package settings

import "strings"

// Key is one of the fixed smart_upload_* settings keys.
type Key string

const (
	KeyProvider                 Key = "smart_upload_provider"
	KeyEndpoint                 Key = "smart_upload_endpoint"
	KeyVisionModel               Key = "smart_upload_vision_model"
	KeyVerificationModel         Key = "smart_upload_verification_model"
	KeyVisionModelParams         Key = "smart_upload_vision_model_params"
	KeyVerificationModelParams   Key = "smart_upload_verification_model_params"
	KeySendFullPDFToLLM          Key = "smart_upload_send_full_pdf_to_llm"
	KeyAcceptedMimeTypes         Key = "smart_upload_accepted_mime_types"
	KeyMaxFileSizeBytes          Key = "smart_upload_max_file_size_bytes"
	KeyMaxPagesPerPart           Key = "smart_upload_max_pages_per_part"
	KeySkipParseThreshold        Key = "smart_upload_skip_parse_threshold"
	KeyAutoApproveThreshold      Key = "smart_upload_auto_approve_threshold"
	KeyAutonomousApprovalThreshold Key = "smart_upload_autonomous_approval_threshold"
	KeyEnableFullyAutonomousMode Key = "smart_upload_enable_fully_autonomous_mode"
	KeyBudgetMaxLLMCalls         Key = "smart_upload_budget_max_llm_calls"
	KeyBudgetMaxInputTokens      Key = "smart_upload_budget_max_input_tokens"
	KeyPromptVersion             Key = "smart_upload_prompt_version"
	KeyVisionPrompt              Key = "smart_upload_vision_prompt"
	KeyVerificationPrompt        Key = "smart_upload_verification_prompt"
	KeyHeaderLabelPrompt         Key = "smart_upload_header_label_prompt"

	KeyOpenAIAPIKey     Key = "llm_openai_api_key"
	KeyAnthropicAPIKey  Key = "llm_anthropic_api_key"
	KeyOpenRouterAPIKey Key = "llm_openrouter_api_key"
	KeyGeminiAPIKey     Key = "llm_gemini_api_key"
	KeyCustomAPIKey     Key = "llm_custom_api_key"
	KeyMistralAPIKey    Key = "llm_mistral_api_key"
	KeyGroqAPIKey       Key = "llm_groq_api_key"
	KeyOllamaCloudAPIKey Key = "llm_ollama_cloud_api_key"
)

// AllKeys is the recognized key set; PUT filters unknown keys against it
// rather than rejecting the whole request (§4.8).
var AllKeys = map[Key]bool{
	KeyProvider: true, KeyEndpoint: true, KeyVisionModel: true, KeyVerificationModel: true,
	KeyVisionModelParams: true, KeyVerificationModelParams: true, KeySendFullPDFToLLM: true,
	KeyAcceptedMimeTypes: true, KeyMaxFileSizeBytes: true, KeyMaxPagesPerPart: true,
	KeySkipParseThreshold: true, KeyAutoApproveThreshold: true, KeyAutonomousApprovalThreshold: true,
	KeyEnableFullyAutonomousMode: true, KeyBudgetMaxLLMCalls: true, KeyBudgetMaxInputTokens: true,
	KeyPromptVersion: true, KeyVisionPrompt: true, KeyVerificationPrompt: true, KeyHeaderLabelPrompt: true,
	KeyOpenAIAPIKey: true, KeyAnthropicAPIKey: true, KeyOpenRouterAPIKey: true,
	KeyGeminiAPIKey: true, KeyCustomAPIKey: true, KeyMistralAPIKey: true,
	KeyGroqAPIKey: true, KeyOllamaCloudAPIKey: true,
}

// SecretKeys carry the __SET__/__UNSET__ masking protocol.
var SecretKeys = map[Key]bool{
	KeyOpenAIAPIKey: true, KeyAnthropicAPIKey: true, KeyOpenRouterAPIKey: true,
	KeyGeminiAPIKey: true, KeyCustomAPIKey: true, KeyMistralAPIKey: true,
	KeyGroqAPIKey: true, KeyOllamaCloudAPIKey: true,
}

// IsSecret reports whether key follows the secret-masking protocol.
func IsSecret(key Key) bool { return SecretKeys[key] }

// IsRecognized reports whether key is one the loader understands.
func IsRecognized(key Key) bool { return AllKeys[key] }

const (
	// SentinelSet means "preserve the existing stored secret".
	SentinelSet = "__SET__"
	// SentinelUnset means "no secret is stored".
	SentinelUnset = "__UNSET__"
)

// EnvVarName maps a settings key to its environment-variable fallback name,
// e.g. "smart_upload_provider" -> "SMART_UPLOAD_PROVIDER".
func EnvVarName(key Key) string {
	return strings.ToUpper(string(key))
}
