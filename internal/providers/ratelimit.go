package providers

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiter sized in requests per second.
// Clients wait on it before each remote call so a batch never exceeds
// the provider's documented limit.
type RateLimiter struct {
	mu sync.Mutex

	// Configuration
	requestsPerSecond float64
	burst             float64

	// Token bucket state
	tokens     float64
	lastUpdate time.Time

	// Statistics
	totalConsumed int64
	totalWaited   time.Duration
	last429Time   time.Time
}

// RateLimiterStatus reports current limiter state.
type RateLimiterStatus struct {
	TokensAvailable int           `json:"tokens_available"`
	RequestsPerSec  float64       `json:"requests_per_second"`
	TotalConsumed   int64         `json:"total_consumed"`
	TotalWaited     time.Duration `json:"total_waited"`
	Last429Time     time.Time     `json:"last_429_time,omitempty"`
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained
// throughput with a one-second burst.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 6.0
	}
	return &RateLimiter{
		requestsPerSecond: requestsPerSecond,
		burst:             requestsPerSecond,
		tokens:            requestsPerSecond,
		lastUpdate:        time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()

		if r.tokens >= 1.0 {
			r.tokens--
			r.totalConsumed++
			r.mu.Unlock()
			return nil
		}

		tokensNeeded := 1.0 - r.tokens
		waitTime := time.Duration(tokensNeeded / r.requestsPerSecond * float64(time.Second))
		r.mu.Unlock()

		// Wait outside lock
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
			r.mu.Lock()
			r.totalWaited += waitTime
			r.mu.Unlock()
		}
	}
}

// TryConsume attempts to consume a token without blocking.
func (r *RateLimiter) TryConsume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1.0 {
		r.tokens--
		r.totalConsumed++
		return true
	}
	return false
}

// Record429 should be called when the provider returns 429. Draining
// the bucket forces the next request to wait a full refill interval.
func (r *RateLimiter) Record429() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.last429Time = time.Now()
	r.tokens = 0
}

// Status returns current limiter state.
func (r *RateLimiter) Status() RateLimiterStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	return RateLimiterStatus{
		TokensAvailable: int(r.tokens),
		RequestsPerSec:  r.requestsPerSecond,
		TotalConsumed:   r.totalConsumed,
		TotalWaited:     r.totalWaited,
		Last429Time:     r.last429Time,
	}
}

// refill adds tokens based on elapsed time. Must be called with lock held.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastUpdate).Seconds()
	r.lastUpdate = now

	r.tokens += elapsed * r.requestsPerSecond
	if r.tokens > r.burst {
		r.tokens = r.burst
	}
}
