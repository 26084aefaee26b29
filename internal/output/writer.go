// Package output converts normalized OCR results into files on disk.
package output

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jackzampolin/scribe/internal/document"
	"github.com/jackzampolin/scribe/internal/providers"
)

const (
	markdownSuffix = ".ocr.md"
	metadataSuffix = ".ocr.json"
)

// Artifacts lists the files written for one input.
type Artifacts struct {
	MarkdownPath string `json:"markdown_path"`
	MetadataPath string `json:"metadata_path,omitempty"`
}

// Metadata is the JSON sidecar written next to the markdown output.
type Metadata struct {
	Model      string          `json:"model"`
	Provider   string          `json:"provider,omitempty"`
	SourceFile string          `json:"source_file,omitempty"`
	Pages      []PageMeta      `json:"pages"`
	Usage      providers.Usage `json:"usage"`
}

// PageMeta summarizes one page without duplicating its text.
type PageMeta struct {
	Index      int  `json:"index"`
	TextLength int  `json:"text_length"`
	HasImages  bool `json:"has_images"`
}

// Writer writes OCR artifacts into a single output directory,
// overwriting prior runs for the same basename.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write produces <basename>.ocr.md and, when withMetadata is set,
// <basename>.ocr.json. The output directory is created if absent.
// Failures come back as io-kind errors so the orchestrator records
// them per file.
func (w *Writer) Write(inputPath string, res *providers.Result, withMetadata bool) (*Artifacts, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, providers.WrapError(providers.KindIO, err,
			"failed to create output directory %s", w.dir)
	}

	base := document.Basename(inputPath)
	artifacts := &Artifacts{
		MarkdownPath: filepath.Join(w.dir, base+markdownSuffix),
	}

	if err := os.WriteFile(artifacts.MarkdownPath, []byte(res.Markdown()), 0o644); err != nil {
		return nil, providers.WrapError(providers.KindIO, err,
			"failed to write %s", artifacts.MarkdownPath)
	}

	if !withMetadata {
		return artifacts, nil
	}

	meta := buildMetadata(inputPath, res)
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, providers.WrapError(providers.KindIO, err, "failed to marshal metadata")
	}
	data = append(data, '\n')

	artifacts.MetadataPath = filepath.Join(w.dir, base+metadataSuffix)
	if err := os.WriteFile(artifacts.MetadataPath, data, 0o644); err != nil {
		return nil, providers.WrapError(providers.KindIO, err,
			"failed to write %s", artifacts.MetadataPath)
	}

	return artifacts, nil
}

// buildMetadata summarizes a result into the sidecar shape.
func buildMetadata(inputPath string, res *providers.Result) *Metadata {
	pages := make([]PageMeta, len(res.Pages))
	for i, p := range res.Pages {
		pages[i] = PageMeta{
			Index:      p.Index,
			TextLength: len(p.Markdown),
			HasImages:  len(p.Images) > 0,
		}
	}

	return &Metadata{
		Model:      res.Model,
		Provider:   res.Provider,
		SourceFile: inputPath,
		Pages:      pages,
		Usage:      res.Usage,
	}
}
