package client

import (
	"context"
	"time"
)

// RateLimiter controls request rate
type RateLimiter struct {
	ticker *time.Ticker
	tokens chan struct{}
	done   chan struct{}
}

// NewRateLimiter creates a rate limiter with specified rate. A nil limiter
// is returned for a non-positive rate and never blocks.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}

	interval := time.Duration(float64(time.Second) / requestsPerSecond)

	rl := &RateLimiter{
		ticker: time.NewTicker(interval),
		tokens: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	// first request goes out immediately
	rl.tokens <- struct{}{}

	go func() {
		for {
			select {
			case <-rl.done:
				return
			case <-rl.ticker.C:
				select {
				case rl.tokens <- struct{}{}:
				default:
				}
			}
		}
	}()

	return rl
}

// Wait blocks until rate limit allows next request
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}

	select {
	case <-rl.tokens:
		return nil
	case <-rl.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops the rate limiter
func (rl *RateLimiter) Stop() {
	if rl == nil {
		return
	}
	rl.ticker.Stop()
	close(rl.done)
}
