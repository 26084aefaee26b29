package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/jackzampolin/scribe/internal/document"
)

const (
	VisionName               = "vision"
	visionDefaultModel       = "gpt-4o-mini"
	visionDefaultPrompt      = "Extract all text from this image. Preserve the structure and formatting as markdown. Output only the extracted text."
	visionDefaultTemperature = 0.1
	visionDefaultMaxTokens   = 8000
)

// VisionConfig holds configuration for the vision-model OCR client.
type VisionConfig struct {
	APIKey      string
	BaseURL     string // Any OpenAI-compatible endpoint
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RateLimit   float64 // Requests per second
	MaxRetries  int
	RetryDelay  time.Duration
	HTTPClient  *http.Client // Optional (tests)
}

// VisionClient implements Provider using a vision-capable chat model
// behind any OpenAI-compatible API. Image input only; PDFs are
// rejected as unsupported.
type VisionClient struct {
	model       string
	prompt      string
	temperature float64
	maxTokens   int
	rateLimit   float64
	maxRetries  int
	retryDelay  time.Duration
	limiter     *RateLimiter
	client      openai.Client
}

// NewVisionClient creates a new vision-model OCR client.
func NewVisionClient(cfg VisionConfig) *VisionClient {
	if cfg.Model == "" {
		cfg.Model = visionDefaultModel
	}
	if cfg.Prompt == "" {
		cfg.Prompt = visionDefaultPrompt
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = visionDefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = visionDefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 2.0
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &VisionClient{
		model:       cfg.Model,
		prompt:      cfg.Prompt,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		rateLimit:   cfg.RateLimit,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		limiter:     NewRateLimiter(cfg.RateLimit),
		client:      openai.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (c *VisionClient) Name() string {
	return VisionName
}

// RequestsPerSecond returns the configured rate limit.
func (c *VisionClient) RequestsPerSecond() float64 {
	return c.rateLimit
}

// MaxRetries returns the maximum retry attempts.
func (c *VisionClient) MaxRetries() int {
	return c.maxRetries
}

// RetryDelayBase returns the base delay for exponential backoff.
func (c *VisionClient) RetryDelayBase() time.Duration {
	return c.retryDelay
}

// Process extracts text from an image via a vision chat completion.
func (c *VisionClient) Process(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	if document.KindForPath(req.Filename) != document.KindImage {
		return nil, NewError(KindUnsupportedFormat,
			"vision provider accepts images only, got %s", req.Filename)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, WrapError(KindService, err, "rate limiter wait interrupted")
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s",
		document.MimeType(req.Filename),
		base64.StdEncoding.EncodeToString(req.Document))

	model := req.Model
	if model == "" {
		model = c.model
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(c.prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURI,
		}),
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	})
	if err != nil {
		return nil, mapVisionError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, NewError(KindService, "no response choices from vision model")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, NewError(KindService, "vision model returned empty content")
	}

	resultModel := resp.Model
	if resultModel == "" {
		resultModel = model
	}

	return &Result{
		Provider: VisionName,
		Model:    resultModel,
		Pages: []Page{
			{Index: 0, Markdown: text},
		},
		Usage:         Usage{PagesProcessed: 1},
		ExecutionTime: time.Since(start),
		RequestID:     req.RequestID,
	}, nil
}

// mapVisionError translates SDK errors into the declared taxonomy.
func mapVisionError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		kind := KindService
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = KindAuthentication
		case http.StatusUnsupportedMediaType:
			kind = KindUnsupportedFormat
		}
		message := apiErr.Message
		if message == "" {
			message = "vision API request failed"
		}
		return &Error{Kind: kind, Message: message, Status: apiErr.StatusCode, Err: err}
	}
	return WrapError(KindService, err, "vision request failed")
}

// Verify interface
var _ Provider = (*VisionClient)(nil)
