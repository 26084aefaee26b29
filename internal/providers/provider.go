package providers

import (
	"context"
	"strings"
	"time"
)

// Provider is the capability contract: submit one document, receive
// structured text. Concrete clients own authentication, wire encoding,
// timeouts, and transport retries; no retry or backoff is promised at
// this boundary.
type Provider interface {
	// Name returns the provider identifier (e.g., "mistral").
	Name() string

	// Process extracts text from one document. Failures are always a
	// *Error carrying an authentication, unsupported-format, or
	// service kind.
	Process(ctx context.Context, req *Request) (*Result, error)

	// Rate limiting properties
	RequestsPerSecond() float64
	MaxRetries() int
	RetryDelayBase() time.Duration
}

// Request encapsulates one document submission. Built per file and
// immutable once constructed.
type Request struct {
	// Document is the raw file content.
	Document []byte

	// Filename is the original name, used for kind detection and
	// upload metadata.
	Filename string

	// Model overrides the client default when non-empty.
	Model string

	// IncludeImageBase64 asks the provider to return embedded image
	// payloads (increases cost).
	IncludeImageBase64 bool

	// RequestID tracks the submission through logs and the outcome.
	RequestID string
}

// Page is one page of extracted text, preserving provider page
// boundaries.
type Page struct {
	Index      int             `json:"index"`
	Markdown   string          `json:"markdown"`
	Images     []PageImage     `json:"images,omitempty"`
	Dimensions *PageDimensions `json:"dimensions,omitempty"`
}

// PageImage is an embedded image detected on a page.
type PageImage struct {
	ID           string `json:"id"`
	TopLeftX     int    `json:"top_left_x"`
	TopLeftY     int    `json:"top_left_y"`
	BottomRightX int    `json:"bottom_right_x"`
	BottomRightY int    `json:"bottom_right_y"`
	ImageBase64  string `json:"image_base64,omitempty"`
}

// PageDimensions reports page geometry when the provider supplies it.
type PageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	DPI    int `json:"dpi"`
}

// Usage reports provider-side accounting.
type Usage struct {
	PagesProcessed int `json:"pages_processed"`
	DocSizeBytes   int `json:"doc_size_bytes,omitempty"`
}

// Result is the normalized response from a provider.
type Result struct {
	// Provider and model info
	Provider string `json:"provider"`
	Model    string `json:"model"`

	// Pages in provider order.
	Pages []Page `json:"pages"`

	// Usage counters, zero-valued when the provider omits them.
	Usage Usage `json:"usage"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Request tracking
	RequestID string `json:"request_id,omitempty"`
}

// Markdown returns the full document body: page texts joined with a
// blank line, lossless relative to provider page boundaries.
func (r *Result) Markdown() string {
	parts := make([]string, len(r.Pages))
	for i, p := range r.Pages {
		parts[i] = p.Markdown
	}
	return strings.Join(parts, "\n\n")
}
