package batch

import (
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/scribe/internal/document"
	"github.com/jackzampolin/scribe/internal/providers"
)

// validateInput checks a path before any bytes leave the machine:
// the file must exist, be a regular file, and carry a supported
// extension. PDFs additionally get a structural pre-flight so a
// corrupt file fails locally instead of burning an upload.
func validateInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return providers.WrapError(providers.KindValidation, err, "file not found: %s", path)
	}
	if info.IsDir() {
		return providers.NewError(providers.KindValidation, "not a file: %s", path)
	}

	kind := document.KindForPath(path)
	if kind == document.KindUnknown {
		return providers.NewError(providers.KindValidation,
			"unsupported file type: %s (supported: %v)", path, document.SupportedExtensions())
	}

	if kind == document.KindPDF {
		if err := preflightPDF(path); err != nil {
			return err
		}
	}

	return nil
}

// preflightPDF verifies the PDF parses and has at least one page.
func preflightPDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return providers.WrapError(providers.KindIO, err, "failed to open PDF: %s", path)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return providers.WrapError(providers.KindValidation, err, "invalid PDF: %s", path)
	}
	if pageCount == 0 {
		return providers.NewError(providers.KindValidation, "PDF has no pages: %s", path)
	}
	return nil
}
