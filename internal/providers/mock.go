package providers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

const MockName = "mock"

// MockProvider is a Provider for testing.
type MockProvider struct {
	// Configurable behavior
	Latency      time.Duration
	Err          error            // Returned for every request when set
	FailFor      map[string]error // Per-filename failures
	ResponseText string
	PageCount    int

	// Rate limiting
	RPS        float64
	Retries    int
	RetryDelay time.Duration

	// State
	requestCount atomic.Int64
}

// NewMockProvider creates a mock with sensible defaults.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		ResponseText: "mock extracted text",
		PageCount:    1,
		RPS:          100,
		Retries:      3,
		RetryDelay:   time.Second,
	}
}

// Name returns the provider identifier.
func (m *MockProvider) Name() string {
	return MockName
}

// RequestsPerSecond returns the configured rate limit.
func (m *MockProvider) RequestsPerSecond() float64 {
	return m.RPS
}

// MaxRetries returns the maximum retry attempts.
func (m *MockProvider) MaxRetries() int {
	return m.Retries
}

// RetryDelayBase returns the base delay between retries.
func (m *MockProvider) RetryDelayBase() time.Duration {
	return m.RetryDelay
}

// RequestCount returns how many Process calls were made.
func (m *MockProvider) RequestCount() int64 {
	return m.requestCount.Load()
}

// Process returns the configured response or failure.
func (m *MockProvider) Process(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	count := m.requestCount.Add(1)

	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, WrapError(KindService, ctx.Err(), "mock interrupted")
		case <-time.After(m.Latency):
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, WrapError(KindService, err, "mock interrupted")
	}

	if m.Err != nil {
		return nil, m.Err
	}
	if err, ok := m.FailFor[req.Filename]; ok {
		return nil, err
	}

	pageCount := m.PageCount
	if pageCount <= 0 {
		pageCount = 1
	}
	pages := make([]Page, pageCount)
	for i := range pages {
		pages[i] = Page{
			Index:    i,
			Markdown: fmt.Sprintf("%s (page %d)", m.ResponseText, i+1),
		}
	}

	model := req.Model
	if model == "" {
		model = "mock-model"
	}

	return &Result{
		Provider:      MockName,
		Model:         model,
		Pages:         pages,
		Usage:         Usage{PagesProcessed: pageCount, DocSizeBytes: len(req.Document)},
		ExecutionTime: time.Since(start),
		RequestID:     fmt.Sprintf("mock-%d", count),
	}, nil
}

// Verify interface
var _ Provider = (*MockProvider)(nil)
