package model

// PageRange is an inclusive page range. Index conventions (0- vs 1-indexed)
// are tracked by the caller; the validator package is the only place that
// converts between them.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// PageCount returns the number of pages covered by the range.
func (r PageRange) PageCount() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Overlaps reports whether r and other share at least one page.
func (r PageRange) Overlaps(other PageRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// ForbiddenLabels carries no information and must be rewritten to
// "Unlabelled" wherever they are used as an instrument label.
var ForbiddenLabels = map[string]bool{
	"":        true,
	"unknown": true,
	"none":    true,
	"n/a":     true,
	"-":       true,
}

// IsForbiddenLabel reports whether label (case-insensitive, trimmed) is a
// forbidden sentinel.
func IsForbiddenLabel(label string) bool {
	return ForbiddenLabels[normalizeLabel(label)]
}

func normalizeLabel(label string) string {
	out := make([]byte, 0, len(label))
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		if c >= 'A' && c <= 'Z' {
			c = c - 'A' + 'a'
		}
		out = append(out, c)
	}
	return string(out)
}

// CuttingInstruction describes one output part to be extracted from the
// primary PDF.
type CuttingInstruction struct {
	PartName      string    `json:"partName"`
	Instrument    string    `json:"instrument"`
	Section       string    `json:"section"`
	Transposition string    `json:"transposition"`
	PartNumber    int       `json:"partNumber"`
	PageRange     PageRange `json:"pageRange"`
}

// ParsedPart is a materialized output: the split PDF plus its identity.
type ParsedPart struct {
	Instrument    string    `json:"instrument"`
	PartName      string    `json:"partName"`
	Section       string    `json:"section"`
	Transposition string    `json:"transposition"`
	PartNumber    int       `json:"partNumber"`
	StorageKey    string    `json:"storageKey"`
	Filename      string    `json:"filename"`
	ByteSize      int64     `json:"byteSize"`
	PageCount     int       `json:"pageCount"`
	PageRange     PageRange `json:"pageRange"` // 1-indexed, inclusive, as persisted
}
