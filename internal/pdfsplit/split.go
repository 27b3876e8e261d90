// Package pdfsplit wraps pdfcpu to implement the "produce per-part PDFs via
// an external splitter" step of the Processor (§4.7 step 10): trimming the
// primary PDF down to each cutting instruction's page range.
package pdfsplit

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	smodel "github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
)

// Split is one trimmed part: the rendered PDF bytes plus the instruction it
// was cut from and the resulting page count.
type Split struct {
	Buffer      []byte
	PageCount   int
	Instruction smodel.CuttingInstruction
}

// PageCount returns the number of pages in a PDF held in memory.
func PageCount(pdf []byte) (int, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("read pdf context: %w", err)
	}
	return ctx.PageCount, nil
}

// SplitByInstructions trims primaryPDF once per instruction, each producing
// an independent in-memory PDF covering that instruction's 0-indexed
// inclusive page range.
func SplitByInstructions(primaryPDF []byte, instructions []smodel.CuttingInstruction) ([]Split, error) {
	results := make([]Split, 0, len(instructions))
	for _, inst := range instructions {
		buf, err := trimRange(primaryPDF, inst.PageRange)
		if err != nil {
			return nil, fmt.Errorf("trim instrument %q pages [%d,%d]: %w", inst.Instrument, inst.PageRange.Start, inst.PageRange.End, err)
		}
		count, err := PageCount(buf)
		if err != nil {
			return nil, fmt.Errorf("count pages for instrument %q: %w", inst.Instrument, err)
		}
		results = append(results, Split{Buffer: buf, PageCount: count, Instruction: inst})
	}
	return results, nil
}

// trimRange extracts a 0-indexed inclusive page range using pdfcpu's Trim,
// which takes a 1-indexed selection string.
func trimRange(pdf []byte, r smodel.PageRange) ([]byte, error) {
	selection := []string{fmt.Sprintf("%d-%d", r.Start+1, r.End+1)}
	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(pdf), &out, selection, nil); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
