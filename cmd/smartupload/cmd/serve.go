package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/processor"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/queue"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/server"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/settings"
)

var (
	serverAddr      string
	serverDebug     bool
	serverWorkDir   string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	workerCount     int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Settings API HTTP server and the upload worker pool",
	Long: `serve starts the Settings API surface (§4.8):

  GET/PUT   /admin/uploads/settings
  POST      /admin/uploads/settings/reset-prompts
  POST      /admin/uploads/settings/test
  GET       /health

alongside an in-process worker pool that drains queued smart-upload jobs
using the Settings API's own store for configuration, so a setting changed
through the API takes effect on the next dequeued job.

Examples:
  smartupload serve --address :8080
  smartupload serve --provider openai --api-key <key> --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().StringVar(&serverWorkDir, "work-dir", ".smartupload", "Local directory backing the object store")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
	serveCmd.Flags().IntVar(&workerCount, "workers", queue.DefaultConcurrency, "Upload worker pool concurrency")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, store, err := loadConfigFromFlags(ctx)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	objects, err := newFileObjectStore(serverWorkDir)
	if err != nil {
		return err
	}
	sessions := newMemSessionRepository()

	logger := slog.Default()
	var pool *queue.WorkerPool
	pipeline := processor.NewPipeline(
		processor.WithObjectStore(objects),
		processor.WithSessionRepository(sessions),
		processor.WithPDFRenderer(pageCountOnlyRenderer{}),
		processor.WithEnqueuer(queue.EnqueuerFunc(func(ctx context.Context, job queue.Job) error {
			return pool.Enqueue(ctx, job)
		})),
	)
	pool = queue.NewWorkerPool(workerCount, makeHandler(pipeline, store), logger)
	defer pool.Close()

	config := &server.Config{
		Address:      serverAddr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}
	srv := server.NewServer(config, store)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	return srv.Run()
}

// makeHandler closes over the store so every job reloads the current
// settings rather than freezing the configuration at server start.
func makeHandler(pipeline *processor.Pipeline, store settings.Store) queue.Handler {
	return func(ctx context.Context, job queue.Job, report func(queue.ProgressEvent)) error {
		cfg, err := settings.Load(ctx, store)
		if err != nil {
			return &queue.FatalError{Reason: "invalid runtime configuration", Cause: err}
		}
		_, err = pipeline.Process(ctx, job, cfg, report)
		return err
	}
}
