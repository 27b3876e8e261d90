package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/processor"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/queue"
)

var processTimeout time.Duration

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Run the Smart Upload Processor against a single local PDF",
	Long: `process runs one PDF through the full pipeline locally: sampling,
segmentation, the primary vision call, validation, splitting, and routing.

Object storage and the session repository are backed by local, in-process
implementations (a directory under --work-dir and an in-memory map) rather
than a hosted database, so this is meant for trying a provider/prompt
configuration against a real file, not production ingestion.

Page rasterization (RenderPage) has no in-pack library to draw on and is
left as a host-supplied seam (see internal/processor.PDFRenderer); this
command's renderer only implements PageCount, so processing a PDF with more
than zero pages will fail at the rendering step until a real rasterizer is
wired in.

Example:
  smartupload process score.pdf --provider ollama --endpoint http://localhost:11434`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().DurationVar(&processTimeout, "timeout", 2*time.Minute, "Processing timeout")
	processCmd.Flags().StringVar(&workDir, "work-dir", ".smartupload", "Local directory backing the object store")
}

var workDir string

func runProcess(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	cfg, _, err := loadConfigFromFlags(ctx)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	objects, err := newFileObjectStore(workDir)
	if err != nil {
		return err
	}
	sessions := newMemSessionRepository()

	sessionID := uuid.New()
	storageKey := fmt.Sprintf("uploads/%s/primary.pdf", sessionID)
	if err := objects.Put(ctx, storageKey, data, nil); err != nil {
		return fmt.Errorf("store primary pdf: %w", err)
	}

	session := model.NewSession(sessionID, filepath.Base(filePath), int64(len(data)), "application/pdf", storageKey, "cli")
	if err := sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	pipeline := processor.NewPipeline(
		processor.WithObjectStore(objects),
		processor.WithSessionRepository(sessions),
		processor.WithPDFRenderer(pageCountOnlyRenderer{}),
	)

	job := queue.Job{Kind: queue.KindSmartUpload, SessionID: sessionID.String(), FileID: storageKey}
	result, err := pipeline.Process(ctx, job, cfg, func(ev queue.ProgressEvent) {
		printVerbose("[%3d%%] %s: %s\n", ev.Percent, ev.Step, ev.Message)
	})
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
