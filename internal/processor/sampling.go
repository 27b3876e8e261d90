package processor

import (
	"sort"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
)

// SamplePages implements the Sampling Rule (§4.7 step 3): if the document
// has at most MaxSampledPages, every page is sent; otherwise the first two
// pages, the last page, and evenly-spaced interior pages fill the budget.
// Returned indices are 0-indexed, ascending, deduplicated.
func SamplePages(totalPages int) []int {
	if totalPages <= 0 {
		return nil
	}
	if totalPages <= model.MaxSampledPages {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i
		}
		return pages
	}

	chosen := map[int]bool{0: true, 1: true, totalPages - 1: true}
	remaining := model.MaxSampledPages - len(chosen)
	if remaining > 0 {
		// Evenly space interior indices across (1, totalPages-2).
		step := float64(totalPages-2) / float64(remaining+1)
		for i := 1; i <= remaining; i++ {
			idx := int(float64(i) * step)
			if idx < 1 {
				idx = 1
			}
			if idx > totalPages-2 {
				idx = totalPages - 2
			}
			chosen[idx] = true
		}
	}

	out := make([]int, 0, len(chosen))
	for idx := range chosen {
		out = append(out, idx)
	}
	sort.Ints(out)
	if len(out) > model.MaxSampledPages {
		out = out[:model.MaxSampledPages]
	}
	return out
}
