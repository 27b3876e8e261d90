// Package processor implements the Smart Upload Processor (§4.7): the job
// orchestrator that renders, analyzes, segments, validates, splits, and
// saves an uploaded PDF's parts, then decides an autonomy-tier routing.
package processor

import (
	"context"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
)

// ObjectStore is the external blob-storage collaborator.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, metadata map[string]string) error
}

// SessionRepository is the external session-record collaborator.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (*model.Session, error)
	Save(ctx context.Context, session *model.Session) error
}

// PDFRenderer renders PDF pages to images for vision calls. Implementations
// wrap a native PDF rasterizer; this module ships none (internal/pdfsplit
// only trims page ranges and counts pages), so rendering is a narrow
// interface seam left for the hosting application to supply.
type PDFRenderer interface {
	// RenderPage renders one 0-indexed page to a PNG at the given scale,
	// cropping to topCropFraction of the page height from the top when
	// topCropFraction is in (0,1); 0 or 1 renders the full page.
	RenderPage(ctx context.Context, pdf []byte, pageIndex int, scale float64, topCropFraction float64) (png []byte, err error)
	PageCount(ctx context.Context, pdf []byte) (int, error)
}

// TextLayerExtractor pulls embedded text from a PDF page, used for the
// deterministic segmentation attempt before falling back to vision.
type TextLayerExtractor interface {
	ExtractPageText(ctx context.Context, pdf []byte, pageIndex int) (text string, hasText bool, err error)
}
