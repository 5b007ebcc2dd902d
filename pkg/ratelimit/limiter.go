// Package ratelimit wraps Uber's token-bucket limiter behind a small
// interface so callers can pace outgoing API requests.
//
// The SDK never rate-limits on its own; the HTTP client only consults a
// limiter when the caller configures one. A zero Rate means no limiting.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/ratelimit"
)

// Rate describes an operation budget: Limit operations per Interval.
type Rate struct {
	Limit    int
	Interval time.Duration
}

// IsZero reports whether the rate is unset, i.e. no limiting requested.
func (r Rate) IsZero() bool {
	return r.Limit == 0 && r.Interval == 0
}

// RateLimiter blocks callers so operations stay within a configured rate.
type RateLimiter interface {
	// Wait blocks until an operation is permitted or the context is cancelled.
	Wait(ctx context.Context) error

	// SetLimit replaces the current rate configuration.
	SetLimit(rate Rate) error
}

// uberLimiter implements RateLimiter using go.uber.org/ratelimit.
// SetLimit may race with in-flight Wait calls, so the limiter swap is
// guarded by a mutex.
type uberLimiter struct {
	mu      sync.Mutex
	limiter ratelimit.Limiter
	rate    Rate
}

// NewTokenBucketLimiter creates a limiter allowing rate.Limit operations per
// rate.Interval, spread evenly by the underlying token bucket.
func NewTokenBucketLimiter(rate Rate) RateLimiter {
	return &uberLimiter{
		limiter: ratelimit.New(perSecond(rate)),
		rate:    rate,
	}
}

func perSecond(rate Rate) int {
	if rate.Interval <= 0 {
		rate.Interval = time.Second
	}
	rps := int(float64(rate.Limit) / rate.Interval.Seconds())
	if rps < 1 {
		rps = 1
	}
	return rps
}

func (l *uberLimiter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limit wait cancelled: %w", ctx.Err())
	default:
		l.mu.Lock()
		limiter := l.limiter
		l.mu.Unlock()
		limiter.Take()
		return nil
	}
}

func (l *uberLimiter) SetLimit(rate Rate) error {
	if rate.Limit <= 0 || rate.Interval <= 0 {
		return fmt.Errorf("invalid rate limit: %+v", rate)
	}
	l.mu.Lock()
	l.limiter = ratelimit.New(perSecond(rate))
	l.rate = rate
	l.mu.Unlock()
	return nil
}
