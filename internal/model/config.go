package model

import "encoding/json"

// RuntimeConfig is the frozen, per-job configuration snapshot produced by
// the settings loader. Nothing downstream may mutate it.
type RuntimeConfig struct {
	Provider          string `json:"provider"`
	VisionModel       string `json:"visionModel"`
	VerificationModel string `json:"verificationModel"`
	Endpoint          string `json:"endpoint"`
	APIKey            string `json:"-"` // never serialized

	AutoApproveThreshold        float64 `json:"autoApproveThreshold"`
	SkipParseThreshold          float64 `json:"skipParseThreshold"`
	AutonomousApprovalThreshold float64 `json:"autonomousApprovalThreshold"`
	EnableFullyAutonomousMode   bool    `json:"enableFullyAutonomousMode"`

	SendFullPdfToLlm bool  `json:"sendFullPdfToLlm"`
	MaxPagesPerPart  int   `json:"maxPagesPerPart"`
	MaxFileSizeBytes int64 `json:"maxFileSizeBytes"`

	BudgetMaxLlmCalls      int `json:"budgetMaxLlmCalls"`
	BudgetMaxInputTokens   int `json:"budgetMaxInputTokens"`

	VisionSystemPrompt       string `json:"visionSystemPrompt"`
	VerificationSystemPrompt string `json:"verificationSystemPrompt"`
	HeaderLabelPrompt        string `json:"headerLabelPrompt"`

	VisionModelParams       json.RawMessage `json:"visionModelParams,omitempty"`
	VerificationModelParams json.RawMessage `json:"verificationModelParams,omitempty"`

	AllowedMimeTypes []string `json:"allowedMimeTypes"`
	PromptVersion    string   `json:"promptVersion"`
}

// MaxSampledPages is the fixed cap on pages sent to the primary vision pass
// (the Sampling Rule in §4.7).
const MaxSampledPages = 8

// HeaderCropBatchSize is the maximum number of header-crop images sent in a
// single header-label fallback call.
const HeaderCropBatchSize = 30
