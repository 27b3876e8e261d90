package processor

import (
	"encoding/json"
	"strings"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
)

// ExtractJSON extracts a JSON object from an LLM response, handling
// fenced markdown code blocks the way providers commonly wrap structured
// output (adapted from the teacher's OpenRouter client helper).
func ExtractJSON(response string) string {
	if start := strings.Index(response, "```json"); start != -1 {
		start += 7
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	if start := strings.Index(response, "```"); start != -1 {
		start += 3
		if nl := strings.Index(response[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	response = strings.TrimSpace(response)
	if (strings.HasPrefix(response, "{") && strings.HasSuffix(response, "}")) ||
		(strings.HasPrefix(response, "[") && strings.HasSuffix(response, "]")) {
		return response
	}

	return response
}

// rawMetadata mirrors the JSON shape the vision prompts ask for; fields are
// typed loosely so coercion can happen explicitly rather than failing
// json.Unmarshal outright on a minor type mismatch.
type rawMetadata struct {
	Title               string                      `json:"title"`
	Composer            string                      `json:"composer"`
	Arranger            string                      `json:"arranger"`
	IsMultiPart         bool                        `json:"isMultiPart"`
	ConfidenceScore     float64                     `json:"confidenceScore"`
	CuttingInstructions []model.CuttingInstruction `json:"cuttingInstructions"`
}

// ParseMetadata parses the primary vision call's response leniently (§4.7
// step 7): strip fences, extract JSON, coerce fields, and fall back to a
// minimal valid metadata plus a single full-score instruction on failure.
func ParseMetadata(response string, totalPages int) (model.ExtractedMetadata, []model.CuttingInstruction) {
	candidate := ExtractJSON(response)

	var raw rawMetadata
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return fallbackMetadata(), fallbackInstructions(totalPages)
	}

	if raw.ConfidenceScore < 0 {
		raw.ConfidenceScore = 0
	}
	if raw.ConfidenceScore > 1 {
		raw.ConfidenceScore = 1
	}

	metadata := model.ExtractedMetadata{
		Title:           raw.Title,
		Composer:        raw.Composer,
		Arranger:        raw.Arranger,
		IsMultiPart:     raw.IsMultiPart,
		ConfidenceScore: raw.ConfidenceScore,
	}

	instructions := raw.CuttingInstructions
	if len(instructions) == 0 {
		instructions = fallbackInstructions(totalPages)
	}

	return metadata, instructions
}

func fallbackMetadata() model.ExtractedMetadata {
	return model.ExtractedMetadata{
		Title:           "Untitled",
		IsMultiPart:     false,
		ConfidenceScore: 0,
	}
}

func fallbackInstructions(totalPages int) []model.CuttingInstruction {
	if totalPages <= 0 {
		return nil
	}
	return []model.CuttingInstruction{{
		PartName:   "Full Score",
		Instrument: "Full Score",
		Section:    "Score",
		PartNumber: 1,
		PageRange:  model.PageRange{Start: 0, End: totalPages - 1},
	}}
}

// HeaderLabels parses the header-label fallback batch response (§4.7 step
// 5): a JSON object with a "labels" array, one entry per image in order.
func HeaderLabels(response string) ([]string, bool) {
	candidate := ExtractJSON(response)
	var parsed struct {
		Labels []string `json:"labels"`
	}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, false
	}
	return parsed.Labels, true
}
