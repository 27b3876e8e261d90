// Package validator implements the Cutting-Instruction Validator (§4.5): a
// pure function that normalizes, repairs, and audits a set of cutting
// instructions against a PDF's page count. It performs no I/O.
package validator

import (
	"fmt"
	"sort"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
)

// Options controls index conversion and gap synthesis.
type Options struct {
	// OneIndexed, when true, means incoming ranges are 1-indexed inclusive
	// at the caller boundary; Validate converts them to 0-indexed
	// internally and converts the output back to 1-indexed.
	OneIndexed bool
	// DetectGaps enables gap-filler synthesis for uncovered page ranges.
	DetectGaps bool
}

// Result is the Validator's output.
type Result struct {
	IsValid      bool
	Instructions []model.CuttingInstruction
	Errors       []string
	Warnings     []string
}

// Validate implements §4.5's responsibilities: index normalization, range
// repair, overlap detection (reported, never merged), forbidden-label
// sanitization, and optional gap-filler synthesis. It is idempotent:
// Validate(Validate(x).Instructions) == Validate(x).Instructions.
func Validate(instructions []model.CuttingInstruction, totalPages int, opts Options) Result {
	var errs []string
	var warnings []string

	normalized := make([]model.CuttingInstruction, 0, len(instructions))
	for i, inst := range instructions {
		start, end := inst.PageRange.Start, inst.PageRange.End
		if opts.OneIndexed {
			start--
			end--
		}

		start = max(start, 0)
		end = min(end, totalPages-1)
		if start > end {
			errs = append(errs, fmt.Sprintf("instruction %d: empty range after clamping (start=%d end=%d)", i, start, end))
			continue
		}

		inst.PageRange = model.PageRange{Start: start, End: end}
		inst.Instrument = sanitizeLabel(inst.Instrument)
		if inst.PartName == "" {
			inst.PartName = inst.Instrument
		}
		if inst.Section == "" {
			inst.Section = "Other"
		}
		if inst.PartNumber < 1 {
			inst.PartNumber = 1
		}
		normalized = append(normalized, inst)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		if normalized[i].PageRange.Start != normalized[j].PageRange.Start {
			return normalized[i].PageRange.Start < normalized[j].PageRange.Start
		}
		return normalized[i].PageRange.End < normalized[j].PageRange.End
	})

	for i := 0; i < len(normalized); i++ {
		for j := i + 1; j < len(normalized); j++ {
			if normalized[i].PageRange.Overlaps(normalized[j].PageRange) {
				errs = append(errs, fmt.Sprintf("instructions %d and %d overlap: [%d,%d] vs [%d,%d]",
					i, j, normalized[i].PageRange.Start, normalized[i].PageRange.End,
					normalized[j].PageRange.Start, normalized[j].PageRange.End))
			}
		}
	}

	if opts.DetectGaps && totalPages > 0 {
		gaps := findGaps(normalized, totalPages)
		for _, g := range gaps {
			normalized = append(normalized, model.CuttingInstruction{
				Instrument: "Unlabelled",
				PartName:   fmt.Sprintf("Unlabelled Pages %d–%d", g.Start+1, g.End+1),
				Section:    "Other",
				PartNumber: 1,
				PageRange:  g,
			})
			warnings = append(warnings, fmt.Sprintf("gap filled: pages %d-%d", g.Start+1, g.End+1))
		}
		sort.SliceStable(normalized, func(i, j int) bool {
			if normalized[i].PageRange.Start != normalized[j].PageRange.Start {
				return normalized[i].PageRange.Start < normalized[j].PageRange.Start
			}
			return normalized[i].PageRange.End < normalized[j].PageRange.End
		})
	}

	out := make([]model.CuttingInstruction, len(normalized))
	copy(out, normalized)
	if opts.OneIndexed {
		for i := range out {
			out[i].PageRange.Start++
			out[i].PageRange.End++
		}
	}

	return Result{
		IsValid:      len(errs) == 0,
		Instructions: out,
		Errors:       errs,
		Warnings:     warnings,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sanitizeLabel rewrites forbidden sentinel labels to "Unlabelled" per the
// Cutting Instruction invariant in §3.
func sanitizeLabel(label string) string {
	if model.IsForbiddenLabel(label) {
		return "Unlabelled"
	}
	return label
}

// findGaps computes the complement of the union of ranges within
// [0, totalPages-1] (§4.5 gap detection).
func findGaps(ranges []model.CuttingInstruction, totalPages int) []model.PageRange {
	covered := make([]bool, totalPages)
	for _, r := range ranges {
		for p := r.PageRange.Start; p <= r.PageRange.End && p < totalPages; p++ {
			if p >= 0 {
				covered[p] = true
			}
		}
	}

	var gaps []model.PageRange
	start := -1
	for p := 0; p < totalPages; p++ {
		if !covered[p] {
			if start == -1 {
				start = p
			}
		} else if start != -1 {
			gaps = append(gaps, model.PageRange{Start: start, End: p - 1})
			start = -1
		}
	}
	if start != -1 {
		gaps = append(gaps, model.PageRange{Start: start, End: totalPages - 1})
	}
	return gaps
}
