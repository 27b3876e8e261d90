// Package segmentation implements the deterministic Segmentation Engine
// (§4.4): given per-page header text, it clusters contiguous pages by
// instrument and emits preliminary cutting instructions with a confidence
// score. It performs no I/O and makes no LLM calls.
package segmentation

import (
	"fmt"
	"strings"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
)

// PageHeader is one page's header text, as extracted from the text layer or
// synthesized by the header-label vision fallback.
type PageHeader struct {
	PageIndex  int // 0-based
	HeaderText string
	HasText    bool
}

// Result is the Segmentation Engine's output.
type Result struct {
	Instructions []model.CuttingInstruction
	Confidence   float64
}

// baseConfidencePerSegment, textLayerBonus, and coverageWeight implement the
// confidence formula in §4.4 step 5.
const (
	baseConfidencePerSegment = 50.0
	textLayerBonus           = 15.0
	coverageWeight           = 10.0
)

// Segment runs the full algorithm: normalize, sweep into segments, assign
// section/transposition, and score confidence.
func Segment(headers []PageHeader, totalPages int, fromTextLayer bool) Result {
	if totalPages <= 0 {
		return Result{}
	}

	labeled := countLabeled(headers)
	if labeled == 0 {
		return Result{
			Instructions: []model.CuttingInstruction{{
				PartName:   "Full Score",
				Instrument: "Full Score",
				Section:    "Score",
				PageRange:  model.PageRange{Start: 0, End: totalPages - 1},
				PartNumber: 1,
			}},
			Confidence: 0,
		}
	}

	segments := sweep(headers, totalPages)
	instructions := make([]model.CuttingInstruction, 0, len(segments))
	countByInstrument := map[string]int{}
	for _, seg := range segments {
		countByInstrument[seg.normalizedInstrument]++
		partNumber := countByInstrument[seg.normalizedInstrument]
		section, transposition := lookup(seg.normalizedInstrument)
		instructions = append(instructions, model.CuttingInstruction{
			PartName:      displayName(seg.displayInstrument, partNumber, len(segments)),
			Instrument:    seg.displayInstrument,
			Section:       section,
			Transposition: transposition,
			PartNumber:    partNumber,
			PageRange:     model.PageRange{Start: seg.start, End: seg.end},
		})
	}

	confidence := baseConfidencePerSegment
	if fromTextLayer {
		confidence += textLayerBonus
	}
	coverage := float64(labeled) / float64(totalPages)
	confidence += coverageWeight * coverage
	if confidence > 100 {
		confidence = 100
	}

	return Result{Instructions: instructions, Confidence: confidence}
}

func countLabeled(headers []PageHeader) int {
	n := 0
	for _, h := range headers {
		if h.HasText {
			n++
		}
	}
	return n
}

type segment struct {
	normalizedInstrument string
	displayInstrument    string
	partNumber           int
	start, end           int
}

// sweep performs step 2 of §4.4: walk pages in order, opening a new segment
// whenever the normalized key or the header's part number changes (on a page
// that actually has text); pages without text extend the current segment.
func sweep(headers []PageHeader, totalPages int) []segment {
	byPage := make(map[int]PageHeader, len(headers))
	for _, h := range headers {
		byPage[h.PageIndex] = h
	}

	var segments []segment
	var current *segment

	for page := 0; page < totalPages; page++ {
		h, ok := byPage[page]
		if !ok || !h.HasText {
			if current != nil {
				current.end = page
			}
			continue
		}

		norm, instrument, part := NormalizeHeader(h.HeaderText)
		if current == nil || current.normalizedInstrument != norm || current.partNumber != part {
			if current != nil {
				segments = append(segments, *current)
			}
			current = &segment{normalizedInstrument: norm, displayInstrument: instrument, partNumber: part, start: page, end: page}
		} else {
			current.end = page
		}
	}
	if current != nil {
		segments = append(segments, *current)
	}
	return segments
}

func displayName(instrument string, partNumber, totalSegments int) string {
	if totalSegments <= 1 {
		return instrument
	}
	return fmt.Sprintf("%s %d", instrument, partNumber)
}

// NormalizeHeader lowercases and strips a header string, removing ordinal
// suffixes / numeric duplicate markers so "Flute 1" and "Flute 2" both
// normalize to the instrument key "flute" while remembering their distinct
// part number and a clean display name ("Flute").
func NormalizeHeader(raw string) (normalizedKey, displayName string, partNumber int) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	fields := strings.Fields(lower)
	partNumber = 0
	kept := fields[:0:0]
	displayFields := strings.Fields(trimmed)
	displayKept := displayFields[:0:0]

	for i, f := range fields {
		if n, ok := parseOrdinal(f); ok {
			partNumber = n
			continue
		}
		kept = append(kept, f)
		if i < len(displayFields) {
			displayKept = append(displayKept, displayFields[i])
		}
	}
	normalizedKey = strings.Join(kept, " ")
	displayName = strings.Join(displayKept, " ")
	if displayName == "" {
		displayName = trimmed
	}
	return normalizedKey, displayName, partNumber
}

// parseOrdinal recognizes a trailing bare integer ("1", "2") or simple
// ordinal word ("1st", "2nd") as a part-number marker.
func parseOrdinal(field string) (int, bool) {
	digits := strings.TrimRight(field, "stndrh")
	if digits == "" {
		return 0, false
	}
	n := 0
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return 0, false
	}
	return n, true
}
