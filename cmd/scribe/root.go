package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/scribe/internal/cli"
	"github.com/jackzampolin/scribe/version"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Batch OCR for PDFs and images via hosted OCR APIs",
	Long: `Scribe sends PDF and image files to a hosted OCR service and writes
the extracted text next to your files as Markdown.

For every input file scribe produces <name>.ocr.md, and optionally a
<name>.ocr.json with per-page metadata. Files are processed one at a
time; a failure on one file never stops the rest of the batch.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.scribe/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputFormat, "output", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	// Set output format and log level before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cli.SetOutputFormat(outputFormat)

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	rootCmd.AddCommand(ocrCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
