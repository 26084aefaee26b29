package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/scribe/internal/document"
)

const (
	MistralName         = "mistral"
	MistralBaseURL      = "https://api.mistral.ai/v1"
	MistralDefaultModel = "mistral-ocr-latest"
)

// MistralConfig holds configuration for the Mistral OCR client.
type MistralConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	RateLimit  float64       // Requests per second (default: 6.0)
	MaxRetries int           // Transport retries for 429/5xx (default: 3)
	RetryDelay time.Duration // Base delay for exponential backoff
	HTTPClient *http.Client  // Optional (tests)
}

// MistralClient implements Provider against the Mistral OCR API.
// Images are submitted inline as base64 data URIs; PDFs are uploaded
// through the files endpoint and referenced by signed URL.
type MistralClient struct {
	apiKey     string
	baseURL    string
	model      string
	rateLimit  float64
	maxRetries int
	retryDelay time.Duration
	limiter    *RateLimiter
	client     *http.Client
}

// NewMistralClient creates a new Mistral OCR client.
func NewMistralClient(cfg MistralConfig) *MistralClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = MistralBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = MistralDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 6.0 // Mistral OCR default rate limit
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &MistralClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		rateLimit:  cfg.RateLimit,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		limiter:    NewRateLimiter(cfg.RateLimit),
		client:     httpClient,
	}
}

// Name returns the provider identifier.
func (c *MistralClient) Name() string {
	return MistralName
}

// RequestsPerSecond returns the rate limit for Mistral OCR.
func (c *MistralClient) RequestsPerSecond() float64 {
	return c.rateLimit
}

// MaxRetries returns the maximum retry attempts.
func (c *MistralClient) MaxRetries() int {
	return c.maxRetries
}

// RetryDelayBase returns the base delay for exponential backoff.
func (c *MistralClient) RetryDelayBase() time.Duration {
	return c.retryDelay
}

// Process extracts text from a PDF or image document.
func (c *MistralClient) Process(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	doc, err := c.buildDocument(ctx, req)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	ocrReq := mistralOCRRequest{
		Model:              model,
		Document:           *doc,
		IncludeImageBase64: req.IncludeImageBase64,
	}

	resp, err := c.ocr(ctx, ocrReq)
	if err != nil {
		return nil, err
	}

	if len(resp.Pages) == 0 {
		return nil, NewError(KindService, "no pages in OCR response")
	}

	pages := make([]Page, len(resp.Pages))
	for i, p := range resp.Pages {
		page := Page{
			Index:    p.Index,
			Markdown: p.Markdown,
		}
		if p.Dimensions != nil {
			page.Dimensions = &PageDimensions{
				Width:  p.Dimensions.Width,
				Height: p.Dimensions.Height,
				DPI:    p.Dimensions.DPI,
			}
		}
		for _, img := range p.Images {
			page.Images = append(page.Images, PageImage{
				ID:           img.ID,
				TopLeftX:     img.TopLeftX,
				TopLeftY:     img.TopLeftY,
				BottomRightX: img.BottomRightX,
				BottomRightY: img.BottomRightY,
				ImageBase64:  img.ImageBase64,
			})
		}
		pages[i] = page
	}

	result := &Result{
		Provider:      MistralName,
		Model:         resp.Model,
		Pages:         pages,
		ExecutionTime: time.Since(start),
		RequestID:     req.RequestID,
	}
	if result.Model == "" {
		result.Model = model
	}
	if resp.UsageInfo != nil {
		result.Usage = Usage{
			PagesProcessed: resp.UsageInfo.PagesProcessed,
			DocSizeBytes:   resp.UsageInfo.DocSizeBytes,
		}
	}

	return result, nil
}

// buildDocument selects the submission encoding: data URI for images,
// upload + signed URL for PDFs.
func (c *MistralClient) buildDocument(ctx context.Context, req *Request) (*mistralDocument, error) {
	switch document.KindForPath(req.Filename) {
	case document.KindImage:
		dataURI := fmt.Sprintf("data:%s;base64,%s",
			document.MimeType(req.Filename),
			base64.StdEncoding.EncodeToString(req.Document))
		return &mistralDocument{
			Type:     "image_url",
			ImageURL: &mistralImageURL{URL: dataURI},
		}, nil

	case document.KindPDF:
		fileID, err := c.uploadFile(ctx, req.Filename, req.Document)
		if err != nil {
			return nil, err
		}
		signedURL, err := c.signedURL(ctx, fileID)
		if err != nil {
			return nil, err
		}
		return &mistralDocument{
			Type:        "document_url",
			DocumentURL: signedURL,
		}, nil

	default:
		return nil, NewError(KindUnsupportedFormat, "unsupported file type: %s", req.Filename)
	}
}

// ocr posts the OCR request, retrying rate-limit and server errors.
func (c *MistralClient) ocr(ctx context.Context, body mistralOCRRequest) (*mistralOCRResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, WrapError(KindService, err, "failed to marshal OCR request")
	}

	var raw []byte
	err = c.withRetry(ctx, func() error {
		var reqErr error
		raw, reqErr = c.do(ctx, "POST", "/ocr", "application/json", bytes.NewReader(bodyBytes))
		return reqErr
	})
	if err != nil {
		return nil, err
	}

	if err := validateOCRResponse(raw); err != nil {
		return nil, err
	}

	var resp mistralOCRResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, WrapError(KindService, err, "failed to unmarshal OCR response")
	}
	return &resp, nil
}

// uploadFile uploads a document for OCR processing and returns its ID.
func (c *MistralClient) uploadFile(ctx context.Context, filename string, content []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", "ocr"); err != nil {
		return "", WrapError(KindService, err, "failed to build upload request")
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", WrapError(KindService, err, "failed to build upload request")
	}
	if _, err := fw.Write(content); err != nil {
		return "", WrapError(KindService, err, "failed to build upload request")
	}
	if err := mw.Close(); err != nil {
		return "", WrapError(KindService, err, "failed to build upload request")
	}

	var raw []byte
	err = c.withRetry(ctx, func() error {
		var reqErr error
		raw, reqErr = c.do(ctx, "POST", "/files", mw.FormDataContentType(), bytes.NewReader(buf.Bytes()))
		return reqErr
	})
	if err != nil {
		return "", err
	}

	var resp mistralUploadResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", WrapError(KindService, err, "failed to unmarshal upload response")
	}
	if resp.ID == "" {
		return "", NewError(KindService, "upload response missing file id")
	}
	return resp.ID, nil
}

// signedURL exchanges an uploaded file ID for a short-lived download URL.
func (c *MistralClient) signedURL(ctx context.Context, fileID string) (string, error) {
	var raw []byte
	err := c.withRetry(ctx, func() error {
		var reqErr error
		raw, reqErr = c.do(ctx, "GET", "/files/"+fileID+"/url", "", nil)
		return reqErr
	})
	if err != nil {
		return "", err
	}

	var resp mistralSignedURLResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", WrapError(KindService, err, "failed to unmarshal signed URL response")
	}
	if resp.URL == "" {
		return "", NewError(KindService, "signed URL response missing url")
	}
	return resp.URL, nil
}

// withRetry runs fn with bounded exponential backoff. Only transient
// failures (429, 5xx, transport errors) are retried.
func (c *MistralClient) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
	)
}

// isRetryable reports whether an error is worth a transport retry.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *Error
	if errors.As(err, &pe) {
		if pe.Status != 0 {
			switch pe.Status {
			case http.StatusTooManyRequests,
				http.StatusInternalServerError,
				http.StatusBadGateway,
				http.StatusServiceUnavailable,
				http.StatusGatewayTimeout:
				return true
			}
			return false
		}
		// No status means a transport-level failure.
		return pe.Kind == KindService
	}
	return true
}

// do executes one HTTP request and returns the response body. Non-2xx
// statuses and transport failures come back as typed errors.
func (c *MistralClient) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, WrapError(KindService, err, "rate limiter wait interrupted")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, WrapError(KindService, err, "failed to create request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, WrapError(KindService, err, "request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(KindService, err, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.Record429()
		}
		return nil, classifyStatus(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// classifyStatus translates an API error response into the declared
// error taxonomy.
func classifyStatus(status int, body []byte) *Error {
	message := string(body)
	var errResp mistralErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	} else if json.Unmarshal(body, &errResp.Error) == nil && errResp.Error.Message != "" {
		// Some endpoints return a flat {message, type} envelope.
		message = errResp.Error.Message
	}

	kind := KindService
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuthentication
	case http.StatusUnsupportedMediaType:
		kind = KindUnsupportedFormat
	}

	return &Error{Kind: kind, Message: message, Status: status}
}

// Mistral OCR API types

type mistralOCRRequest struct {
	Model              string          `json:"model"`
	Document           mistralDocument `json:"document"`
	IncludeImageBase64 bool            `json:"include_image_base64,omitempty"`
	Pages              []int           `json:"pages,omitempty"`
	ImageLimit         int             `json:"image_limit,omitempty"`
	ImageMinSize       int             `json:"image_min_size,omitempty"`
}

type mistralDocument struct {
	Type        string           `json:"type"` // "image_url" or "document_url"
	ImageURL    *mistralImageURL `json:"image_url,omitempty"`
	DocumentURL string           `json:"document_url,omitempty"`
}

type mistralImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type mistralOCRResponse struct {
	Model              string            `json:"model"`
	Pages              []mistralOCRPage  `json:"pages"`
	DocumentAnnotation string            `json:"document_annotation,omitempty"`
	UsageInfo          *mistralUsageInfo `json:"usage_info,omitempty"`
}

type mistralOCRPage struct {
	Index      int                    `json:"index"`
	Markdown   string                 `json:"markdown"`
	Images     []mistralOCRImage      `json:"images,omitempty"`
	Dimensions *mistralPageDimensions `json:"dimensions,omitempty"`
}

type mistralOCRImage struct {
	ID              string `json:"id"`
	TopLeftX        int    `json:"top_left_x"`
	TopLeftY        int    `json:"top_left_y"`
	BottomRightX    int    `json:"bottom_right_x"`
	BottomRightY    int    `json:"bottom_right_y"`
	ImageBase64     string `json:"image_base64,omitempty"`
	ImageAnnotation string `json:"image_annotation,omitempty"`
}

type mistralPageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	DPI    int `json:"dpi"`
}

type mistralUsageInfo struct {
	PagesProcessed int `json:"pages_processed"`
	DocSizeBytes   int `json:"doc_size_bytes,omitempty"`
}

type mistralUploadResponse struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Filename  string `json:"filename"`
	Purpose   string `json:"purpose"`
	CreatedAt int64  `json:"created_at"`
}

type mistralSignedURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

type mistralErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Verify interface
var _ Provider = (*MistralClient)(nil)
