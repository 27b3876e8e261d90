package processor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/pdfsplit"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/provider"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/quality"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/queue"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/segmentation"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/validator"
)

// textLayerCoverageThreshold and headerCropTopFraction implement §4.7 steps
// 4-5's constants.
const (
	textLayerCoverageThreshold = 0.60
	headerCropTopFraction      = 0.20
	headerCropScale            = 2.0
	sampledImageScale          = 2.0
)

// Pipeline is the Smart Upload Processor.
type Pipeline struct {
	dispatcher  *provider.Dispatcher
	objects     ObjectStore
	sessions    SessionRepository
	renderer    PDFRenderer
	textLayer   TextLayerExtractor
	enqueuer    queue.Enqueuer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithDispatcher(d *provider.Dispatcher) Option   { return func(p *Pipeline) { p.dispatcher = d } }
func WithObjectStore(s ObjectStore) Option           { return func(p *Pipeline) { p.objects = s } }
func WithSessionRepository(r SessionRepository) Option { return func(p *Pipeline) { p.sessions = r } }
func WithPDFRenderer(r PDFRenderer) Option           { return func(p *Pipeline) { p.renderer = r } }
func WithTextLayerExtractor(e TextLayerExtractor) Option { return func(p *Pipeline) { p.textLayer = e } }
func WithEnqueuer(q queue.Enqueuer) Option           { return func(p *Pipeline) { p.enqueuer = q } }

// NewPipeline builds a Pipeline from the given collaborators.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{dispatcher: provider.NewDispatcher()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is what Process returns on success.
type Result struct {
	PartsCreated int
	Status       string
}

// Process runs the full 15-step job body described in §4.7.
func (p *Pipeline) Process(ctx context.Context, job queue.Job, cfg model.RuntimeConfig, report func(queue.ProgressEvent)) (Result, error) {
	emit := func(step string, percent int, message string) {
		if report != nil {
			report(queue.ProgressEvent{SessionID: job.SessionID, Step: step, Percent: percent, Message: message})
		}
	}

	// Step 1: starting (0%)
	emit("starting", 0, "loading session")
	session, err := p.sessions.Get(ctx, job.SessionID)
	if err != nil || session == nil {
		return Result{}, &queue.FatalError{Reason: "session not found", Cause: err}
	}

	budget := model.NewBudget(cfg.BudgetMaxLlmCalls, cfg.BudgetMaxInputTokens)

	// Step 2: downloading (5%)
	emit("downloading", 5, "downloading primary PDF")
	primaryPDF, err := p.objects.Get(ctx, session.StorageKey)
	if err != nil {
		return Result{}, fmt.Errorf("download primary pdf: %w", err)
	}
	if int64(len(primaryPDF)) > cfg.MaxFileSizeBytes {
		return Result{}, &queue.FatalError{Reason: "primary pdf exceeds configured maximum file size"}
	}

	// Step 3: rendering (10%)
	emit("rendering", 10, "rendering representative pages")
	totalPages, err := p.renderer.PageCount(ctx, primaryPDF)
	if err != nil {
		return Result{}, fmt.Errorf("count pages: %w", err)
	}
	sampledIndices := SamplePages(totalPages)
	sampledImages, err := p.renderSampledImages(ctx, primaryPDF, sampledIndices)
	if err != nil {
		return Result{}, fmt.Errorf("render sampled pages: %w", err)
	}

	// Step 4: analyzing, text-layer segmentation attempt (20%)
	emit("analyzing", 20, "attempting deterministic text-layer segmentation")
	segResult, segmentationAttempted := p.attemptTextLayerSegmentation(ctx, primaryPDF, totalPages)

	// Step 5: analyzing, header-label fallback (25%)
	if !segmentationAttempted {
		emit("analyzing", 25, "falling back to header-label vision crops")
		segResult, _ = p.headerLabelFallback(ctx, primaryPDF, totalPages, cfg, budget)
	}

	// Step 6: analyzing, primary vision call (30%)
	emit("analyzing", 30, "running primary vision call")
	if !budget.Reserve() {
		return Result{}, &queue.FatalError{Reason: "budget exhausted before primary vision call", Cause: provider.ErrBudgetExhausted}
	}
	rawContent, usage, err := p.callPrimaryVision(ctx, primaryPDF, sampledImages, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("primary vision call: %w", err)
	}
	budget.RecordTokens(usage.InputTokens + usage.OutputTokens)

	// Step 7: lenient parse
	metadata, instructions := ParseMetadata(rawContent, totalPages)

	// Step 8: overlay deterministic segmentation
	segmentationContributed := segResult.Confidence > 0 && len(segResult.Instructions) > 0
	if segmentationContributed {
		instructions = segResult.Instructions
		if metadata.ConfidenceScore < segResult.Confidence/100 {
			metadata.ConfidenceScore = segResult.Confidence / 100
		}
	}

	// Step 9: validating (50%)
	emit("validating", 50, "validating cutting instructions")
	valResult := validator.Validate(instructions, totalPages, validator.Options{OneIndexed: false, DetectGaps: true})

	if !valResult.IsValid || metadata.ConfidenceScore*100 < cfg.SkipParseThreshold {
		session.RoutingDecision = model.RoutingNoParse
		session.SecondPassStatus = model.SecondPassQueued
		session.Notes = append(session.Notes, "validation failed or confidence below skip-parse threshold; queued for second pass")
		if err := p.sessions.Save(ctx, session); err != nil {
			return Result{}, fmt.Errorf("save session before second pass: %w", err)
		}
		if p.enqueuer != nil {
			_ = p.enqueuer.Enqueue(ctx, queue.Job{Kind: queue.KindSecondPass, SessionID: job.SessionID, FileID: job.FileID})
		}
		emit("queued_for_second_pass", 100, "queued for second pass review")
		return Result{Status: "queued_for_second_pass"}, nil
	}

	// Step 10: splitting (70%)
	emit("splitting", 70, "splitting pdf into parts")
	splits, err := pdfsplit.SplitByInstructions(primaryPDF, valResult.Instructions)
	if err != nil {
		return Result{}, fmt.Errorf("split pdf: %w", err)
	}

	// Step 11: saving (90%)
	emit("saving", 90, "saving parts")
	parts := make([]model.ParsedPart, 0, len(splits))
	for _, s := range splits {
		slug := slugify(displayNameFor(s.Instruction))
		storageKey := fmt.Sprintf("smart-upload/%s/parts/%s.pdf", job.SessionID, slug)
		if err := p.objects.Put(ctx, storageKey, s.Buffer, map[string]string{
			"sessionId":        job.SessionID,
			"instrument":       s.Instruction.Instrument,
			"partName":         s.Instruction.PartName,
			"section":          s.Instruction.Section,
			"originalUploadId": job.FileID,
		}); err != nil {
			return Result{}, fmt.Errorf("save part %q: %w", s.Instruction.PartName, err)
		}
		parts = append(parts, model.ParsedPart{
			Instrument:    s.Instruction.Instrument,
			PartName:      s.Instruction.PartName,
			Section:       s.Instruction.Section,
			Transposition: s.Instruction.Transposition,
			PartNumber:    s.Instruction.PartNumber,
			StorageKey:    storageKey,
			Filename:      slug + ".pdf",
			ByteSize:      int64(len(s.Buffer)),
			PageCount:     s.PageCount,
			PageRange:     model.PageRange{Start: s.Instruction.PageRange.Start + 1, End: s.Instruction.PageRange.End + 1},
		})
	}

	// Step 12: auto-parse second pass enqueue (only for that routing decision)
	// (routing is finalized after quality gates below; this job's path only
	// reaches here when it did not take the no_parse_second_pass exit.)

	// Step 13: quality gates
	qualityResult := quality.Evaluate(quality.Input{
		ParsedParts:             parts,
		Metadata:                metadata,
		TotalPages:              totalPages,
		MaxPagesPerPart:         cfg.MaxPagesPerPart,
		SegmentationConfidence:  segResult.Confidence,
		SegmentationContributed: segmentationContributed,
	})

	finalConfidencePct := qualityResult.FinalConfidence * 100
	routing := RouteDecision(finalConfidencePct, cfg.AutoApproveThreshold, cfg.SkipParseThreshold)

	session.RoutingDecision = routing
	session.SecondPassStatus = model.SecondPassNotNeeded
	if routing == model.RoutingSecondPass {
		session.SecondPassStatus = model.SecondPassQueued
	}

	shouldAutoCommit := cfg.EnableFullyAutonomousMode &&
		finalConfidencePct >= cfg.AutonomousApprovalThreshold &&
		session.SecondPassStatus == model.SecondPassNotNeeded &&
		!qualityResult.Failed

	// Step 14: atomic session update
	session.ExtractedMetadata = metadata
	session.ConfidenceScore = metadata.ConfidenceScore
	session.FinalConfidence = qualityResult.FinalConfidence
	session.ParsedParts = parts
	session.CuttingInstructions = valResult.Instructions
	session.AutoApproved = shouldAutoCommit
	session.RequiresHumanReview = !shouldAutoCommit && routing != model.RoutingAutoApprove
	session.FirstPassRaw = model.TruncateRawContent(rawContent)
	if qualityResult.Failed {
		session.Notes = append(session.Notes, qualityResult.Reasons...)
	}
	if err := p.sessions.Save(ctx, session); err != nil {
		return Result{}, fmt.Errorf("save session: %w", err)
	}

	if session.SecondPassStatus == model.SecondPassQueued && p.enqueuer != nil {
		_ = p.enqueuer.Enqueue(ctx, queue.Job{Kind: queue.KindSecondPass, SessionID: job.SessionID, FileID: job.FileID})
	}

	// Step 15: auto-commit enqueue + complete
	if shouldAutoCommit && p.enqueuer != nil {
		_ = p.enqueuer.Enqueue(ctx, queue.Job{Kind: queue.KindAutoCommit, SessionID: job.SessionID, FileID: job.FileID})
	}
	emit("complete", 100, "processing complete")

	return Result{PartsCreated: len(parts), Status: "complete"}, nil
}

// RouteDecision implements the routing rule in §4.7: finalConfidence
// determines which autonomy tier the session lands in.
func RouteDecision(finalConfidencePct, autoApproveThreshold, skipParseThreshold float64) model.RoutingDecision {
	switch {
	case finalConfidencePct >= autoApproveThreshold:
		return model.RoutingAutoApprove
	case finalConfidencePct >= skipParseThreshold:
		return model.RoutingSecondPass
	default:
		return model.RoutingNoParse
	}
}

func (p *Pipeline) renderSampledImages(ctx context.Context, pdf []byte, indices []int) ([]provider.Image, error) {
	images := make([]provider.Image, 0, len(indices))
	for _, idx := range indices {
		png, err := p.renderer.RenderPage(ctx, pdf, idx, sampledImageScale, 0)
		if err != nil {
			return nil, err
		}
		images = append(images, provider.Image{MimeType: "image/png", Base64: toBase64(png)})
	}
	return images, nil
}

func (p *Pipeline) attemptTextLayerSegmentation(ctx context.Context, pdf []byte, totalPages int) (segmentation.Result, bool) {
	if p.textLayer == nil || totalPages == 0 {
		return segmentation.Result{}, false
	}

	headers := make([]segmentation.PageHeader, 0, totalPages)
	covered := 0
	for page := 0; page < totalPages; page++ {
		text, hasText, err := p.textLayer.ExtractPageText(ctx, pdf, page)
		if err != nil {
			hasText = false
		}
		if hasText {
			covered++
		}
		headers = append(headers, segmentation.PageHeader{PageIndex: page, HeaderText: text, HasText: hasText})
	}

	coverage := float64(covered) / float64(totalPages)
	if coverage < textLayerCoverageThreshold {
		return segmentation.Result{}, false
	}

	result := segmentation.Segment(headers, totalPages, true)
	return result, true
}

func (p *Pipeline) headerLabelFallback(ctx context.Context, pdf []byte, totalPages int, cfg model.RuntimeConfig, budget *model.Budget) (segmentation.Result, bool) {
	if p.renderer == nil || totalPages == 0 {
		return segmentation.Result{}, false
	}

	labels := make([]string, totalPages)
	for batchStart := 0; batchStart < totalPages; batchStart += model.HeaderCropBatchSize {
		if budget.Exhausted() {
			break
		}
		batchEnd := batchStart + model.HeaderCropBatchSize
		if batchEnd > totalPages {
			batchEnd = totalPages
		}

		var crops []provider.Image
		for page := batchStart; page < batchEnd; page++ {
			png, err := p.renderer.RenderPage(ctx, pdf, page, headerCropScale, headerCropTopFraction)
			if err != nil {
				continue
			}
			crops = append(crops, provider.Image{MimeType: "image/png", Base64: toBase64(png)})
		}
		if len(crops) == 0 {
			continue
		}

		if !budget.Reserve() {
			break
		}
		resp, err := p.dispatcher.CallVisionModel(ctx, provider.Config{
			Provider: provider.ID(cfg.Provider), Model: cfg.VerificationModel, Endpoint: cfg.Endpoint, APIKey: cfg.APIKey,
		}, crops, DefaultHeaderLabelPrompt, provider.CallOptions{ResponseFormat: provider.ResponseFormatJSON})
		if err != nil {
			continue
		}
		budget.RecordTokens(resp.Usage.InputTokens + resp.Usage.OutputTokens)

		batchLabels, ok := HeaderLabels(resp.Content)
		if !ok {
			continue
		}
		for i, label := range batchLabels {
			if batchStart+i < totalPages {
				labels[batchStart+i] = label
			}
		}
	}

	headers := make([]segmentation.PageHeader, totalPages)
	for i, l := range labels {
		headers[i] = segmentation.PageHeader{PageIndex: i, HeaderText: l, HasText: l != ""}
	}
	result := segmentation.Segment(headers, totalPages, false)
	return result, true
}

func (p *Pipeline) callPrimaryVision(ctx context.Context, pdf []byte, sampledImages []provider.Image, cfg model.RuntimeConfig) (string, provider.Usage, error) {
	meta, _ := provider.GetMeta(provider.ID(cfg.Provider))
	cfgIn := provider.Config{Provider: provider.ID(cfg.Provider), Model: cfg.VisionModel, Endpoint: cfg.Endpoint, APIKey: cfg.APIKey}

	opts := provider.CallOptions{System: cfg.VisionSystemPrompt, ResponseFormat: provider.ResponseFormatJSON}
	prompt := UserPromptSampledImages
	var images []provider.Image

	if cfg.SendFullPdfToLlm && meta.SupportsPdfInput {
		prompt = UserPromptNativePDF
		opts.Documents = []provider.Document{{MimeType: "application/pdf", Base64: toBase64(pdf)}}
	} else {
		images = sampledImages
	}

	result, err := p.dispatcher.CallVisionModel(ctx, cfgIn, images, prompt, opts)
	if err != nil {
		return "", provider.Usage{}, err
	}
	return result.Content, result.Usage, nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// slugify normalizes a display name into a storage-key-safe slug: lowercase,
// runs of non-alphanumerics collapsed to single hyphens (§6).
func slugify(name string) string {
	lower := strings.ToLower(name)
	slug := nonAlphanumeric.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}

func displayNameFor(inst model.CuttingInstruction) string {
	if inst.PartName != "" {
		return inst.PartName
	}
	return inst.Instrument
}
