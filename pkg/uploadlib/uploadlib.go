// Package uploadlib provides a public API for the Smart Upload Pipeline.
//
// It re-exports the core value types and the Processor's public
// collaborator interfaces, so a hosting application can wire its own
// object store, session repository, and PDF renderer against this
// package without importing internal/ directly.
//
// Example usage:
//
//	pipeline := uploadlib.NewPipeline(
//	    uploadlib.WithObjectStore(myObjectStore),
//	    uploadlib.WithSessionRepository(mySessionRepo),
//	    uploadlib.WithPDFRenderer(myRenderer),
//	)
//	result, err := pipeline.Process(ctx, job, cfg, reportFunc)
package uploadlib

import (
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/processor"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/queue"
)

// Re-export core value types.
type (
	Session            = model.Session
	RuntimeConfig      = model.RuntimeConfig
	CuttingInstruction = model.CuttingInstruction
	PageRange          = model.PageRange
	ParsedPart         = model.ParsedPart
	ExtractedMetadata  = model.ExtractedMetadata
	RoutingDecision    = model.RoutingDecision
	ParseStatus        = model.ParseStatus
	SecondPassStatus   = model.SecondPassStatus
)

// Re-export routing decision constants.
const (
	RoutingAutoApprove = model.RoutingAutoApprove
	RoutingSecondPass  = model.RoutingSecondPass
	RoutingNoParse     = model.RoutingNoParse
)

// Re-export typed error types.
type (
	ConfigError  = model.ConfigError
	ConfigErrors = model.ConfigErrors
)

// Re-export the Processor's collaborator interfaces and constructor.
type (
	ObjectStore        = processor.ObjectStore
	SessionRepository  = processor.SessionRepository
	PDFRenderer        = processor.PDFRenderer
	TextLayerExtractor = processor.TextLayerExtractor
	Pipeline           = processor.Pipeline
	Option             = processor.Option
	Result             = processor.Result
)

var (
	NewPipeline             = processor.NewPipeline
	WithObjectStore         = processor.WithObjectStore
	WithSessionRepository   = processor.WithSessionRepository
	WithPDFRenderer         = processor.WithPDFRenderer
	WithTextLayerExtractor  = processor.WithTextLayerExtractor
	WithEnqueuer            = processor.WithEnqueuer
)

// Re-export the queue job contract used to drive Pipeline.Process.
type (
	Job           = queue.Job
	JobKind       = queue.JobKind
	ProgressEvent = queue.ProgressEvent
	Enqueuer      = queue.Enqueuer
	FatalError    = queue.FatalError
)

const (
	KindSmartUpload = queue.KindSmartUpload
	KindSecondPass  = queue.KindSecondPass
	KindAutoCommit  = queue.KindAutoCommit
)
