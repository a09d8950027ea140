// Package main is the planwise command line client. It runs the recipe
// generator and the task prioritizer locally without the HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/ai"
	"github.com/nadmax/planwise/internal/config"
	"github.com/nadmax/planwise/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "planwise",
	Short: "Task prioritization and recipe generation from the terminal",
	Long: `planwise scores task lists and generates recipes using the same
prioritizer and recipe extractor as the planwise server.

Configuration comes from ./planwise.yaml (or --config) and the same
environment variables the server reads, e.g. GOOGLE_API_KEY.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded

		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			l, err := logging.New("debug", "console")
			if err != nil {
				return err
			}
			logger = l
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./planwise.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log to stderr")
}

func newCompleter(cmd *cobra.Command) (*ai.GeminiClient, error) {
	return ai.NewGeminiClient(cmd.Context(), ai.GeminiConfig{
		APIKey:  cfg.GoogleAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
