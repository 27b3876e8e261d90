// Package model defines the core data types shared across the smart upload
// pipeline: upload sessions, cutting instructions, parsed parts, runtime
// configuration, and the typed errors raised while processing them.
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ParseStatus tracks whether a session's primary PDF has been split into parts.
type ParseStatus string

const (
	ParseStatusNotParsed ParseStatus = "NOT_PARSED"
	ParseStatusParsed    ParseStatus = "PARSED"
	ParseStatusFailed    ParseStatus = "FAILED"
)

// SecondPassStatus tracks the lifecycle of the (optional) verification pass.
//
// The source system stores this as either the literal string "NOT_NEEDED" or
// a null value depending on code path; this repo always writes the literal
// string on its own writes but accepts either on read (see UnmarshalJSON).
type SecondPassStatus string

const (
	SecondPassNotNeeded SecondPassStatus = "NOT_NEEDED"
	SecondPassQueued    SecondPassStatus = "QUEUED"
	SecondPassComplete  SecondPassStatus = "COMPLETE"
	SecondPassFailed    SecondPassStatus = "FAILED"
)

// UnmarshalJSON accepts both `null` and the literal status strings so that
// records written by either convention described in the design notes parse
// the same way.
func (s *SecondPassStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = SecondPassNotNeeded
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SecondPassStatus(raw)
	return nil
}

// RoutingDecision is the terminal classification of a processed session.
type RoutingDecision string

const (
	RoutingAutoApprove RoutingDecision = "auto_parse_auto_approve"
	RoutingSecondPass  RoutingDecision = "auto_parse_second_pass"
	RoutingNoParse     RoutingDecision = "no_parse_second_pass"
)

// rank orders routing decisions for the monotonicity property in §8:
// auto_approve > second_pass > no_parse_second_pass.
func (r RoutingDecision) rank() int {
	switch r {
	case RoutingAutoApprove:
		return 2
	case RoutingSecondPass:
		return 1
	case RoutingNoParse:
		return 0
	default:
		return -1
	}
}

// AtLeastAsAutonomousAs reports whether r is not a "lower" routing tier than other.
func (r RoutingDecision) AtLeastAsAutonomousAs(other RoutingDecision) bool {
	return r.rank() >= other.rank()
}

// RawContentMaxBytes is the fixed truncation bound for Session.FirstPassRaw,
// resolving the open question in the design notes.
const RawContentMaxBytes = 64 * 1024

// Session is one upload session: the mutable record the processor owns
// exclusively for the duration of a job.
type Session struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	ByteSize   int64     `json:"byteSize"`
	MimeType   string    `json:"mimeType"`
	StorageKey string    `json:"storageKey"`
	UploaderID string    `json:"uploaderId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	ExtractedMetadata ExtractedMetadata `json:"extractedMetadata"`
	ConfidenceScore   float64           `json:"confidenceScore"`
	FinalConfidence   float64           `json:"finalConfidence"`

	RoutingDecision   RoutingDecision  `json:"routingDecision"`
	ParseStatus       ParseStatus      `json:"parseStatus"`
	SecondPassStatus  SecondPassStatus `json:"secondPassStatus"`
	AutoApproved      bool             `json:"autoApproved"`
	RequiresHumanReview bool           `json:"requiresHumanReview"`

	ParsedParts         []ParsedPart        `json:"parsedParts"`
	CuttingInstructions []CuttingInstruction `json:"cuttingInstructions"`
	TempFiles           []string            `json:"tempFiles"`

	FirstPassRaw string `json:"firstPassRaw"`
	Notes        []string `json:"notes,omitempty"`

	Provider           string          `json:"provider"`
	VisionModel        string          `json:"visionModel"`
	VerificationModel  string          `json:"verificationModel"`
	ModelParams        json.RawMessage `json:"modelParams,omitempty"`
	PromptVersion      string          `json:"promptVersion"`
}

// ExtractedMetadata is the top-level JSON object the vision model is asked
// to produce, plus whatever the segmentation engine overlays onto it.
type ExtractedMetadata struct {
	Title           string  `json:"title"`
	Composer        string  `json:"composer,omitempty"`
	Arranger        string  `json:"arranger,omitempty"`
	IsMultiPart     bool    `json:"isMultiPart"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

// NewSession creates a session in its initial, not-yet-processed state.
func NewSession(id uuid.UUID, filename string, byteSize int64, mimeType, storageKey, uploaderID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:               id,
		Filename:         filename,
		ByteSize:         byteSize,
		MimeType:         mimeType,
		StorageKey:       storageKey,
		UploaderID:       uploaderID,
		CreatedAt:        now,
		UpdatedAt:        now,
		ParseStatus:      ParseStatusNotParsed,
		SecondPassStatus: SecondPassNotNeeded,
	}
}

// TruncateRawContent enforces RawContentMaxBytes on first-pass content kept
// for audit purposes.
func TruncateRawContent(raw string) string {
	if len(raw) <= RawContentMaxBytes {
		return raw
	}
	return raw[:RawContentMaxBytes]
}

// Validate checks the Session invariants listed in the data model section.
// It does not mutate the session; callers decide how to react to a
// violation (typically: fail the write, or downgrade routing).
func (s *Session) Validate() error {
	if s.ParseStatus == ParseStatusParsed && len(s.ParsedParts) == 0 {
		return NewValidationError("parsedParts", len(s.ParsedParts), "non-empty-when-parsed",
			"parseStatus=PARSED requires at least one parsed part")
	}
	if s.RoutingDecision == RoutingAutoApprove && s.SecondPassStatus != SecondPassNotNeeded {
		return NewValidationError("secondPassStatus", s.SecondPassStatus, "not-needed-on-auto-approve",
			"routingDecision=auto_parse_auto_approve requires secondPassStatus=NOT_NEEDED")
	}
	if s.AutoApproved && s.RequiresHumanReview {
		return NewValidationError("requiresHumanReview", s.RequiresHumanReview, "exclusive-with-auto-approved",
			"autoApproved=true requires requiresHumanReview=false")
	}
	return nil
}
