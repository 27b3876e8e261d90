// Package quality implements the Quality-Gate Evaluator (§4.6): a pure
// predicate composition over a completed split result, run after the
// Validator, deciding whether a job's output is trustworthy enough to
// auto-commit.
package quality

import (
	"fmt"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
)

// Input bundles everything the gates need.
type Input struct {
	ParsedParts             []model.ParsedPart
	Metadata                model.ExtractedMetadata
	TotalPages              int
	MaxPagesPerPart         int
	SegmentationConfidence  float64
	SegmentationContributed bool
}

// Result is the Evaluator's output.
type Result struct {
	Failed          bool
	Reasons         []string
	FinalConfidence float64
}

// Evaluate runs all six gates in §4.6 and computes finalConfidence.
func Evaluate(in Input) Result {
	var reasons []string

	if len(in.ParsedParts) == 0 {
		reasons = append(reasons, "no parsed parts produced")
	}

	for _, p := range in.ParsedParts {
		if in.MaxPagesPerPart > 0 && p.PageCount > in.MaxPagesPerPart {
			reasons = append(reasons, fmt.Sprintf("part %q has %d pages, exceeds max of %d", p.PartName, p.PageCount, in.MaxPagesPerPart))
		}
	}

	if !coversExactly(in.ParsedParts, in.TotalPages) {
		reasons = append(reasons, "parsed parts do not cover the document exactly (gap or overlap)")
	}

	for _, p := range in.ParsedParts {
		if model.IsForbiddenLabel(p.Instrument) {
			reasons = append(reasons, fmt.Sprintf("part %q has a forbidden label", p.PartName))
		}
	}

	if in.Metadata.Title == "" {
		reasons = append(reasons, "metadata.title is missing or empty")
	}

	if in.Metadata.IsMultiPart && len(in.ParsedParts) < 2 {
		reasons = append(reasons, "metadata.isMultiPart=true but fewer than 2 parts were produced")
	}
	if !in.Metadata.IsMultiPart && len(in.ParsedParts) != 1 {
		reasons = append(reasons, "metadata.isMultiPart=false but part count is not exactly 1")
	}

	finalConfidence := in.Metadata.ConfidenceScore
	if in.SegmentationContributed {
		blended := 0.7*in.Metadata.ConfidenceScore + 0.3*(in.SegmentationConfidence/100)
		if blended < finalConfidence {
			finalConfidence = blended
		}
	}

	return Result{
		Failed:          len(reasons) > 0,
		Reasons:         reasons,
		FinalConfidence: finalConfidence,
	}
}

// coversExactly reports whether the union of part page ranges equals
// [1, totalPages] exactly, with no gaps and no overlaps.
func coversExactly(parts []model.ParsedPart, totalPages int) bool {
	if totalPages <= 0 {
		return len(parts) == 0
	}
	covered := make([]bool, totalPages+1) // 1-indexed
	for _, p := range parts {
		for page := p.PageRange.Start; page <= p.PageRange.End; page++ {
			if page < 1 || page > totalPages {
				return false
			}
			if covered[page] {
				return false // overlap
			}
			covered[page] = true
		}
	}
	for page := 1; page <= totalPages; page++ {
		if !covered[page] {
			return false // gap
		}
	}
	return true
}
