package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/scribe/internal/batch"
	"github.com/jackzampolin/scribe/internal/config"
	"github.com/jackzampolin/scribe/internal/output"
	"github.com/jackzampolin/scribe/internal/providers"
	"github.com/jackzampolin/scribe/internal/watch"
)

var (
	watchOutputDir   string
	watchModel       string
	watchProvider    string
	watchNoScan      bool
	watchSettleDelay time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and OCR files as they appear",
	Long: `Watch a directory for new PDF and image files and process each one
as soon as it finishes being written. Existing supported files are
processed once at startup unless --no-scan is set.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		providerName := watchProvider
		if providerName == "" {
			providerName = cfg.Defaults.Provider
		}
		if err := cfg.ValidateProvider(providerName); err != nil {
			return err
		}

		registry := providers.NewRegistry(slog.Default())
		registry.Configure(cfg.ToRegistryConfig())
		if _, err := registry.Get(providerName); err != nil {
			return err
		}

		// Resolve the provider per request so a config reload (key
		// rotation, rate-limit change) applies without a restart.
		provider := registry.Dynamic(providerName)
		mgr.OnChange(func(c *config.Config) {
			registry.Configure(c.ToRegistryConfig())
		})
		mgr.WatchConfig()

		model := watchModel
		if model == "" {
			if pc, ok := cfg.GetProvider(providerName); ok && pc.Model != "" {
				model = pc.Model
			} else {
				model = cfg.Defaults.Model
			}
		}

		outDir := watchOutputDir
		if outDir == "" {
			outDir = cfg.Defaults.OutputDir
		}

		runner := batch.New(batch.Config{
			Provider: provider,
			Writer:   output.NewWriter(outDir),
			Model:    model,
			Logger:   slog.Default(),
		})

		w, err := watch.New(watch.Config{
			Dir:         args[0],
			Runner:      runner,
			Logger:      slog.Default(),
			SettleDelay: watchSettleDelay,
		})
		if err != nil {
			return err
		}

		if !watchNoScan {
			if _, err := w.Scan(cmd.Context()); err != nil {
				return err
			}
		}

		if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVarP(
		&watchOutputDir, "output-dir", "o", "", "directory for .ocr.md outputs (default: current directory)",
	)
	watchCmd.Flags().StringVarP(
		&watchModel, "model", "m", "", "model identifier (default: from config)",
	)
	watchCmd.Flags().StringVar(
		&watchProvider, "provider", "", "OCR provider name (default: from config)",
	)
	watchCmd.Flags().BoolVar(
		&watchNoScan, "no-scan", false, "skip processing files already in the directory",
	)
	watchCmd.Flags().DurationVar(
		&watchSettleDelay, "settle-delay", 2*time.Second, "how long a file's size must hold steady before processing",
	)
}
