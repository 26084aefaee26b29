package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/scribe/internal/batch"
	"github.com/jackzampolin/scribe/internal/cli"
	"github.com/jackzampolin/scribe/internal/config"
	"github.com/jackzampolin/scribe/internal/output"
	"github.com/jackzampolin/scribe/internal/providers"
)

var (
	ocrOutputDir    string
	ocrModel        string
	ocrProvider     string
	ocrJSONMetadata bool
	ocrImageBase64  bool
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <file> [file...]",
	Short: "Run OCR over one or more PDF or image files",
	Long: `Process each file through the configured OCR provider and write
<name>.ocr.md beside it (or under --output-dir).

Files are processed in the order given. A file that fails — missing,
unsupported, or rejected by the service — is reported in the summary
and the batch moves on. The exit status is non-zero if any file failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		providerName := ocrProvider
		if providerName == "" {
			providerName = cfg.Defaults.Provider
		}

		// Configuration problems are fatal before any file is touched.
		if err := cfg.ValidateProvider(providerName); err != nil {
			return err
		}

		registry := providers.NewRegistry(slog.Default())
		registry.Configure(cfg.ToRegistryConfig())
		provider, err := registry.Get(providerName)
		if err != nil {
			return err
		}

		model := ocrModel
		if model == "" {
			if pc, ok := cfg.GetProvider(providerName); ok && pc.Model != "" {
				model = pc.Model
			} else {
				model = cfg.Defaults.Model
			}
		}

		outDir := ocrOutputDir
		if outDir == "" {
			outDir = cfg.Defaults.OutputDir
		}

		// Naming an output directory opts into the metadata sidecar.
		withMetadata := ocrJSONMetadata || cmd.Flags().Changed("output-dir")

		runner := batch.New(batch.Config{
			Provider:           provider,
			Writer:             output.NewWriter(outDir),
			Model:              model,
			IncludeImageBase64: ocrImageBase64,
			WriteMetadata:      withMetadata,
			Logger:             slog.Default(),
		})

		outcome := runner.Run(cmd.Context(), args)

		if err := cli.Output(outcome.Summary()); err != nil {
			return err
		}
		if !outcome.AllSucceeded() {
			return fmt.Errorf("%d of %d files failed", outcome.Failed(), len(outcome.Entries))
		}
		return nil
	},
}

func init() {
	ocrCmd.Flags().StringVarP(
		&ocrOutputDir, "output-dir", "o", "", "directory for .ocr.md outputs (default: alongside each input)",
	)
	ocrCmd.Flags().StringVarP(
		&ocrModel, "model", "m", "", "model identifier (default: from config)",
	)
	ocrCmd.Flags().StringVar(
		&ocrProvider, "provider", "", "OCR provider name (default: from config)",
	)
	ocrCmd.Flags().BoolVar(
		&ocrJSONMetadata, "json-metadata", false, "also write <name>.ocr.json with per-page metadata",
	)
	ocrCmd.Flags().BoolVar(
		&ocrImageBase64, "include-image-base64", false, "ask the service to return embedded images as base64",
	)
}
