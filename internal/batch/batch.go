// Package batch orchestrates OCR over an ordered set of input files.
//
// Files are processed sequentially; each one is validated, read,
// submitted, and written before the next begins. A failure on any
// file is recorded and the batch continues — one bad file never
// prevents processing of the rest.
package batch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/scribe/internal/output"
	"github.com/jackzampolin/scribe/internal/providers"
)

// Config fixes the parameters for one batch run.
type Config struct {
	Provider           providers.Provider
	Writer             *output.Writer
	Model              string
	IncludeImageBase64 bool
	WriteMetadata      bool
	Logger             *slog.Logger
}

// Runner processes batches against a single provider and writer.
type Runner struct {
	cfg Config
	log *slog.Logger
}

// New creates a batch runner.
func New(cfg Config) *Runner {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cfg: cfg, log: log}
}

// Run processes every input exactly once and returns an Outcome with
// one entry per input, order-preserving. An interrupted run stops
// before starting the next file; inputs never attempted are recorded
// as canceled failures so no file is silently dropped.
func (r *Runner) Run(ctx context.Context, inputs []string) *Outcome {
	outcome := &Outcome{Entries: make([]Entry, 0, len(inputs))}

	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			r.log.Warn("batch interrupted", "remaining", len(inputs)-i)
			for _, skipped := range inputs[i:] {
				outcome.Entries = append(outcome.Entries, failedEntry(
					skipped, uuid.New().String(), time.Now(),
					providers.WrapError(providers.KindCanceled, err, "batch interrupted before processing"),
				))
			}
			break
		}

		entry := r.ProcessFile(ctx, input)
		outcome.Entries = append(outcome.Entries, entry)
	}

	r.log.Info("batch complete",
		"total", len(outcome.Entries),
		"succeeded", outcome.Succeeded(),
		"failed", outcome.Failed(),
	)
	return outcome
}

// ProcessFile runs the full per-file sequence: validate, read,
// submit, write. Every failure comes back inside the Entry; nothing
// escapes to abort a surrounding batch.
func (r *Runner) ProcessFile(ctx context.Context, input string) Entry {
	start := time.Now()
	id := uuid.New().String()
	log := r.log.With("file", input, "id", id)

	if err := validateInput(input); err != nil {
		log.Warn("validation failed", "error", err)
		return failedEntry(input, id, start, err)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		err = providers.WrapError(providers.KindIO, err, "failed to read %s", input)
		log.Warn("read failed", "error", err)
		return failedEntry(input, id, start, err)
	}

	log.Debug("submitting document", "bytes", len(data), "provider", r.cfg.Provider.Name())
	result, err := r.cfg.Provider.Process(ctx, &providers.Request{
		Document:           data,
		Filename:           filepath.Base(input),
		Model:              r.cfg.Model,
		IncludeImageBase64: r.cfg.IncludeImageBase64,
		RequestID:          id,
	})
	if err != nil {
		log.Warn("OCR failed", "error", err, "kind", providers.KindOf(err).String())
		return failedEntry(input, id, start, err)
	}

	artifacts, err := r.cfg.Writer.Write(input, result, r.cfg.WriteMetadata)
	if err != nil {
		log.Warn("write failed", "error", err)
		return failedEntry(input, id, start, err)
	}

	log.Info("processed file",
		"pages", len(result.Pages),
		"output", artifacts.MarkdownPath,
		"duration", time.Since(start),
	)
	return Entry{
		Input:     input,
		ID:        id,
		Status:    StatusSucceeded,
		Artifacts: artifacts,
		Pages:     len(result.Pages),
		Duration:  time.Since(start),
	}
}
