// Package watch runs OCR continuously over a directory: files that
// appear (or finish being written) are picked up and processed one
// at a time through the batch runner.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jackzampolin/scribe/internal/batch"
	"github.com/jackzampolin/scribe/internal/document"
)

// Config fixes the parameters for one watch session.
type Config struct {
	Dir    string
	Runner *batch.Runner
	Logger *slog.Logger

	// SettleDelay is how long a file's size must hold steady before
	// it is considered fully written. Zero means the default.
	SettleDelay time.Duration

	// PollInterval is the spacing between size checks while a file
	// is settling. Zero means the default.
	PollInterval time.Duration

	// OnEntry, when set, is called with the entry for each processed
	// file.
	OnEntry func(batch.Entry)
}

const (
	defaultSettleDelay  = 2 * time.Second
	defaultPollInterval = 250 * time.Millisecond
)

// Watcher picks up supported files appearing in a directory.
type Watcher struct {
	cfg Config
	log *slog.Logger
}

// New creates a watcher for cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "watch", Path: cfg.Dir, Err: os.ErrInvalid}
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{cfg: cfg, log: log}, nil
}

// Run blocks, processing files as they appear, until ctx is canceled.
// A file already mid-copy when its event arrives is left alone until
// its size stops changing.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.cfg.Dir); err != nil {
		return err
	}
	w.log.Info("watching directory", "dir", w.cfg.Dir)

	// Files seen recently enough that a second event should not
	// trigger a second run.
	processed := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			path := event.Name
			if !document.Supported(path) {
				continue
			}
			if last, seen := processed[path]; seen && time.Since(last) < w.cfg.SettleDelay {
				continue
			}

			if err := w.awaitSettled(ctx, path); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.log.Warn("file disappeared before processing", "file", path, "error", err)
				continue
			}
			processed[path] = time.Now()

			entry := w.cfg.Runner.ProcessFile(ctx, path)
			if w.cfg.OnEntry != nil {
				w.cfg.OnEntry(entry)
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// awaitSettled waits until path's size holds steady for SettleDelay.
func (w *Watcher) awaitSettled(ctx context.Context, path string) error {
	var (
		lastSize  int64 = -1
		stableFor time.Duration
	)
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize {
			stableFor += w.cfg.PollInterval
			if stableFor >= w.cfg.SettleDelay {
				return nil
			}
		} else {
			lastSize = info.Size()
			stableFor = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Scan processes the supported files already present in the directory,
// in name order. It is meant to run once before Run so pre-existing
// files are not missed.
func (w *Watcher) Scan(ctx context.Context) (*batch.Outcome, error) {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return nil, err
	}

	var inputs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(w.cfg.Dir, e.Name())
		if document.Supported(path) {
			inputs = append(inputs, path)
		}
	}

	outcome := w.cfg.Runner.Run(ctx, inputs)
	if w.cfg.OnEntry != nil {
		for _, entry := range outcome.Entries {
			w.cfg.OnEntry(entry)
		}
	}
	return outcome, nil
}
