package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ServiceType identifies a Google API service for rate limiting purposes.
type ServiceType string

const (
	ServiceGmail ServiceType = "gmail"
	ServiceDrive ServiceType = "drive"
)

// RateLimitConfig holds rate limiting configuration for a service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
	// Backoff is the pause after a rate-limited response without Retry-After.
	Backoff time.Duration
	// MaxRetries bounds retries of a rate-limited call.
	MaxRetries int
}

// DefaultRateLimits are well below Google's per-user quotas.
var DefaultRateLimits = map[ServiceType]RateLimitConfig{
	ServiceGmail: {RequestsPerSecond: 2.0, BurstSize: 5, Backoff: 30 * time.Second, MaxRetries: 3},
	ServiceDrive: {RequestsPerSecond: 8.0, BurstSize: 10, Backoff: 30 * time.Second, MaxRetries: 3},
}

// RateLimiter is a token bucket with a shared backoff window set by 429s.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	cfg     RateLimitConfig
}

// NewRateLimiter creates a limiter for the specified service.
func NewRateLimiter(service ServiceType) *RateLimiter {
	cfg, ok := DefaultRateLimits[service]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10, Backoff: 30 * time.Second, MaxRetries: 3}
	}
	return NewRateLimiterWithConfig(cfg)
}

// NewRateLimiterWithConfig creates a rate limiter with custom configuration.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		cfg:     cfg,
	}
}

// Wait blocks until a request can be made, honouring any backoff window.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimitError opens a backoff window. A zero duration uses the
// configured backoff.
func (r *RateLimiter) RecordRateLimitError(after time.Duration) {
	if after <= 0 {
		after = r.cfg.Backoff
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if at := time.Now().Add(after); at.After(r.retryAt) {
		r.retryAt = at
	}
}

// Do runs call under the limiter and retries rate-limited failures up to
// MaxRetries times. The final error is returned unclassified.
func (r *RateLimiter) Do(ctx context.Context, call func() error) error {
	for attempt := 0; ; attempt++ {
		if err := r.Wait(ctx); err != nil {
			return err
		}
		err := call()
		if err == nil || !IsRateLimited(err) || attempt >= r.cfg.MaxRetries {
			return err
		}
		r.RecordRateLimitError(retryAfter(err))
	}
}
