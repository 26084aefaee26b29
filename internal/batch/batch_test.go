package batch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/scribe/internal/output"
	"github.com/jackzampolin/scribe/internal/providers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func newTestRunner(t *testing.T, mock *providers.MockProvider, outDir string, withMetadata bool) *Runner {
	t.Helper()
	return New(Config{
		Provider:      mock,
		Writer:        output.NewWriter(outDir),
		Model:         "mistral-ocr-latest",
		WriteMetadata: withMetadata,
		Logger:        testLogger(),
	})
}

func TestRunner_Run(t *testing.T) {
	t.Run("all files succeed in order", func(t *testing.T) {
		inDir := t.TempDir()
		outDir := t.TempDir()
		inputs := []string{
			writeTestImage(t, inDir, "a.png"),
			writeTestImage(t, inDir, "b.png"),
			writeTestImage(t, inDir, "c.png"),
		}

		mock := providers.NewMockProvider()
		runner := newTestRunner(t, mock, outDir, false)

		outcome := runner.Run(context.Background(), inputs)

		if len(outcome.Entries) != 3 {
			t.Fatalf("entries = %d, want 3", len(outcome.Entries))
		}
		for i, entry := range outcome.Entries {
			if entry.Input != inputs[i] {
				t.Errorf("entry %d input = %q, want %q (order must be preserved)", i, entry.Input, inputs[i])
			}
			if entry.Status != StatusSucceeded {
				t.Errorf("entry %d failed: %s", i, entry.Error)
			}
		}
		if !outcome.AllSucceeded() {
			t.Error("expected AllSucceeded")
		}
		if mock.RequestCount() != 3 {
			t.Errorf("provider calls = %d, want 3", mock.RequestCount())
		}
	})

	t.Run("remote failure on middle file is isolated", func(t *testing.T) {
		inDir := t.TempDir()
		outDir := t.TempDir()
		inputs := []string{
			writeTestImage(t, inDir, "one.png"),
			writeTestImage(t, inDir, "two.png"),
			writeTestImage(t, inDir, "three.png"),
		}

		mock := providers.NewMockProvider()
		mock.FailFor = map[string]error{
			"two.png": &providers.Error{Kind: providers.KindService, Message: "upstream 500", Status: 500},
		}
		runner := newTestRunner(t, mock, outDir, false)

		outcome := runner.Run(context.Background(), inputs)

		if len(outcome.Entries) != 3 {
			t.Fatalf("entries = %d, want 3", len(outcome.Entries))
		}
		if outcome.Entries[0].Status != StatusSucceeded {
			t.Error("file 1 should succeed")
		}
		if outcome.Entries[1].Status != StatusFailed {
			t.Error("file 2 should fail")
		}
		if outcome.Entries[1].ErrorKind != "service" {
			t.Errorf("file 2 error kind = %q, want service", outcome.Entries[1].ErrorKind)
		}
		if outcome.Entries[2].Status != StatusSucceeded {
			t.Error("file 3 should succeed")
		}

		// Files 1 and 3 have outputs on disk; file 2 does not.
		if _, err := os.Stat(filepath.Join(outDir, "one.ocr.md")); err != nil {
			t.Errorf("expected one.ocr.md: %v", err)
		}
		if _, err := os.Stat(filepath.Join(outDir, "two.ocr.md")); !os.IsNotExist(err) {
			t.Error("two.ocr.md should not exist")
		}
		if _, err := os.Stat(filepath.Join(outDir, "three.ocr.md")); err != nil {
			t.Errorf("expected three.ocr.md: %v", err)
		}

		if outcome.Succeeded() != 2 || outcome.Failed() != 1 {
			t.Errorf("succeeded/failed = %d/%d, want 2/1", outcome.Succeeded(), outcome.Failed())
		}
	})

	t.Run("unsupported extension never reaches the provider", func(t *testing.T) {
		inDir := t.TempDir()
		path := filepath.Join(inDir, "notes.txt")
		if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
			t.Fatal(err)
		}

		mock := providers.NewMockProvider()
		runner := newTestRunner(t, mock, t.TempDir(), false)

		outcome := runner.Run(context.Background(), []string{path})

		if len(outcome.Entries) != 1 {
			t.Fatalf("entries = %d, want 1", len(outcome.Entries))
		}
		entry := outcome.Entries[0]
		if entry.Status != StatusFailed {
			t.Fatal("expected failure")
		}
		if entry.ErrorKind != "validation" {
			t.Errorf("error kind = %q, want validation", entry.ErrorKind)
		}
		if mock.RequestCount() != 0 {
			t.Errorf("provider calls = %d, want 0", mock.RequestCount())
		}
	})

	t.Run("missing file is a validation failure", func(t *testing.T) {
		mock := providers.NewMockProvider()
		runner := newTestRunner(t, mock, t.TempDir(), false)

		outcome := runner.Run(context.Background(), []string{"/nonexistent/ghost.png"})

		if outcome.Entries[0].ErrorKind != "validation" {
			t.Errorf("error kind = %q, want validation", outcome.Entries[0].ErrorKind)
		}
		if mock.RequestCount() != 0 {
			t.Error("provider should not be called")
		}
	})

	t.Run("corrupt PDF fails preflight locally", func(t *testing.T) {
		inDir := t.TempDir()
		path := filepath.Join(inDir, "broken.pdf")
		if err := os.WriteFile(path, []byte("this is not a PDF"), 0o644); err != nil {
			t.Fatal(err)
		}

		mock := providers.NewMockProvider()
		runner := newTestRunner(t, mock, t.TempDir(), false)

		outcome := runner.Run(context.Background(), []string{path})

		entry := outcome.Entries[0]
		if entry.Status != StatusFailed {
			t.Fatal("expected failure")
		}
		if entry.ErrorKind != "validation" {
			t.Errorf("error kind = %q, want validation", entry.ErrorKind)
		}
		if mock.RequestCount() != 0 {
			t.Error("provider should not be called for a corrupt PDF")
		}
	})

	t.Run("metadata written when enabled", func(t *testing.T) {
		inDir := t.TempDir()
		outDir := t.TempDir()
		input := writeTestImage(t, inDir, "report.png")

		runner := newTestRunner(t, providers.NewMockProvider(), outDir, true)
		outcome := runner.Run(context.Background(), []string{input})

		entry := outcome.Entries[0]
		if entry.Status != StatusSucceeded {
			t.Fatalf("failed: %s", entry.Error)
		}
		if entry.Artifacts.MetadataPath == "" {
			t.Fatal("expected metadata path")
		}
		if _, err := os.Stat(entry.Artifacts.MetadataPath); err != nil {
			t.Errorf("expected metadata file: %v", err)
		}
	})

	t.Run("canceled context records every input", func(t *testing.T) {
		inDir := t.TempDir()
		inputs := []string{
			writeTestImage(t, inDir, "a.png"),
			writeTestImage(t, inDir, "b.png"),
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		mock := providers.NewMockProvider()
		runner := newTestRunner(t, mock, t.TempDir(), false)
		outcome := runner.Run(ctx, inputs)

		if len(outcome.Entries) != 2 {
			t.Fatalf("entries = %d, want 2 (no silent drops)", len(outcome.Entries))
		}
		for i, entry := range outcome.Entries {
			if entry.Status != StatusFailed {
				t.Errorf("entry %d should be failed", i)
			}
			if entry.ErrorKind != "canceled" {
				t.Errorf("entry %d kind = %q, want canceled", i, entry.ErrorKind)
			}
		}
		if mock.RequestCount() != 0 {
			t.Error("no file should be submitted after cancellation")
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		runner := newTestRunner(t, providers.NewMockProvider(), t.TempDir(), false)
		outcome := runner.Run(context.Background(), nil)

		if len(outcome.Entries) != 0 {
			t.Errorf("entries = %d, want 0", len(outcome.Entries))
		}
		if !outcome.AllSucceeded() {
			t.Error("empty batch counts as all succeeded")
		}
	})
}
