// Package document classifies input files for OCR submission.
package document

import (
	"path/filepath"
	"strings"
)

// Kind distinguishes the two submission encodings the OCR API accepts.
type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindImage
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// imageExtensions are the raster formats accepted for inline submission.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".avif": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// KindForPath classifies a file path by extension.
func KindForPath(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return KindPDF
	case imageExtensions[ext]:
		return KindImage
	default:
		return KindUnknown
	}
}

// Supported reports whether the path has an extension the pipeline accepts.
func Supported(path string) bool {
	return KindForPath(path) != KindUnknown
}

// SupportedExtensions returns the accepted extensions, PDF first.
func SupportedExtensions() []string {
	exts := []string{".pdf", ".png", ".jpg", ".jpeg", ".avif", ".gif", ".bmp", ".tiff", ".tif"}
	return exts
}

// MimeType returns the MIME type for an image path. The API rejects
// "image/jpg", so .jpg normalizes to image/jpeg.
func MimeType(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "jpg" {
		ext = "jpeg"
	}
	if ext == "tif" {
		ext = "tiff"
	}
	return "image/" + ext
}

// Basename returns the file name without directory or extension,
// used to derive output artifact names.
func Basename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
