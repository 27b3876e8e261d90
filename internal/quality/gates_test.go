package quality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/quality"
)

func validParts() []model.ParsedPart {
	return []model.ParsedPart{
		{PartName: "Flute", Instrument: "Flute", PageRange: model.PageRange{Start: 1, End: 5}, PageCount: 5},
		{PartName: "Clarinet", Instrument: "Clarinet", PageRange: model.PageRange{Start: 6, End: 10}, PageCount: 5},
	}
}

func TestEvaluate_AllGatesPass(t *testing.T) {
	in := quality.Input{
		ParsedParts:     validParts(),
		Metadata:        model.ExtractedMetadata{Title: "Overture", IsMultiPart: true, ConfidenceScore: 0.9},
		TotalPages:      10,
		MaxPagesPerPart: 20,
	}

	result := quality.Evaluate(in)

	assert.False(t, result.Failed)
	assert.Empty(t, result.Reasons)
	assert.Equal(t, 0.9, result.FinalConfidence)
}

func TestEvaluate_NoParts(t *testing.T) {
	result := quality.Evaluate(quality.Input{
		Metadata:   model.ExtractedMetadata{Title: "Overture"},
		TotalPages: 10,
	})

	assert.True(t, result.Failed)
	assert.Contains(t, result.Reasons[0], "no parsed parts")
}

func TestEvaluate_ExceedsMaxPagesPerPart(t *testing.T) {
	in := quality.Input{
		ParsedParts:     validParts(),
		Metadata:        model.ExtractedMetadata{Title: "Overture", IsMultiPart: true, ConfidenceScore: 0.9},
		TotalPages:      10,
		MaxPagesPerPart: 3,
	}

	result := quality.Evaluate(in)

	assert.True(t, result.Failed)
	assert.NotEmpty(t, result.Reasons)
}

func TestEvaluate_GapFailsCoverage(t *testing.T) {
	parts := []model.ParsedPart{
		{PartName: "Flute", Instrument: "Flute", PageRange: model.PageRange{Start: 1, End: 4}, PageCount: 4},
	}
	result := quality.Evaluate(quality.Input{
		ParsedParts:     parts,
		Metadata:        model.ExtractedMetadata{Title: "Overture", IsMultiPart: false, ConfidenceScore: 0.9},
		TotalPages:      10,
		MaxPagesPerPart: 20,
	})

	assert.True(t, result.Failed)
}

func TestEvaluate_ForbiddenLabel(t *testing.T) {
	parts := []model.ParsedPart{
		{PartName: "Unknown", Instrument: "unknown", PageRange: model.PageRange{Start: 1, End: 10}, PageCount: 10},
	}
	result := quality.Evaluate(quality.Input{
		ParsedParts:     parts,
		Metadata:        model.ExtractedMetadata{Title: "Overture", ConfidenceScore: 0.9},
		TotalPages:      10,
		MaxPagesPerPart: 20,
	})

	assert.True(t, result.Failed)
}

func TestEvaluate_MissingTitle(t *testing.T) {
	result := quality.Evaluate(quality.Input{
		ParsedParts:     validParts(),
		Metadata:        model.ExtractedMetadata{IsMultiPart: true, ConfidenceScore: 0.9},
		TotalPages:      10,
		MaxPagesPerPart: 20,
	})

	assert.True(t, result.Failed)
}

func TestEvaluate_IsMultiPartMismatch(t *testing.T) {
	result := quality.Evaluate(quality.Input{
		ParsedParts:     validParts(),
		Metadata:        model.ExtractedMetadata{Title: "Overture", IsMultiPart: false, ConfidenceScore: 0.9},
		TotalPages:      10,
		MaxPagesPerPart: 20,
	})

	assert.True(t, result.Failed)
}

func TestEvaluate_FinalConfidenceBlendedWhenSegmentationContributed(t *testing.T) {
	result := quality.Evaluate(quality.Input{
		ParsedParts:             validParts(),
		Metadata:                model.ExtractedMetadata{Title: "Overture", IsMultiPart: true, ConfidenceScore: 0.9},
		TotalPages:              10,
		MaxPagesPerPart:         20,
		SegmentationConfidence:  50,
		SegmentationContributed: true,
	})

	assert.False(t, result.Failed)
	assert.InDelta(t, 0.7*0.9+0.3*0.5, result.FinalConfidence, 0.0001)
}

func TestEvaluate_FinalConfidenceBlendTakesTheLowerValue(t *testing.T) {
	result := quality.Evaluate(quality.Input{
		ParsedParts:             validParts(),
		Metadata:                model.ExtractedMetadata{Title: "Overture", IsMultiPart: true, ConfidenceScore: 0.95},
		TotalPages:              10,
		MaxPagesPerPart:         20,
		SegmentationConfidence:  60,
		SegmentationContributed: true,
	})

	assert.False(t, result.Failed)
	// blended = 0.7*0.95 + 0.3*0.6 = 0.845, which is below metadata's 0.95.
	assert.InDelta(t, 0.845, result.FinalConfidence, 0.0001)
}
