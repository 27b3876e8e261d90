package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	verbose           bool
	providerFlag      string
	endpoint          string
	apiKey            string
	visionModel       string
	verificationModel string
)

var rootCmd = &cobra.Command{
	Use:   "smartupload",
	Short: "Smart Upload Pipeline for sheet music ingestion",
	Long: `smartupload turns an uploaded PDF of sheet music into per-instrument
PDF parts with structured metadata, routed through three autonomy tiers:
auto-commit, human-reviewed, and manual.

Examples:
  # Run the Settings API server
  smartupload serve --provider openai --api-key <key>

  # Process a single PDF end to end, locally
  smartupload process score.pdf --provider ollama --endpoint http://localhost:11434`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "LLM provider id (env: SMART_UPLOAD_PROVIDER)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "LLM endpoint override (env: SMART_UPLOAD_ENDPOINT)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for the selected provider (env: LLM_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&visionModel, "vision-model", "", "Vision model id (env: SMART_UPLOAD_VISION_MODEL)")
	rootCmd.PersistentFlags().StringVar(&verificationModel, "verification-model", "", "Verification model id (env: SMART_UPLOAD_VERIFICATION_MODEL)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if providerFlag == "" {
		providerFlag = os.Getenv("SMART_UPLOAD_PROVIDER")
	}
	if endpoint == "" {
		endpoint = os.Getenv("SMART_UPLOAD_ENDPOINT")
	}
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}
	if visionModel == "" {
		visionModel = os.Getenv("SMART_UPLOAD_VISION_MODEL")
	}
	if verificationModel == "" {
		verificationModel = os.Getenv("SMART_UPLOAD_VERIFICATION_MODEL")
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
