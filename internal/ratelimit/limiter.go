// Package ratelimit provides the politeness delay between page fetches.
//
// The limiter enforces a minimum interval between requests derived from
// a requests-per-second budget, and defers to a larger robots.txt
// Crawl-delay when one is advertised.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInvalidRate is returned when the requests-per-second value is not
// positive.
var ErrInvalidRate = errors.New("requests per second must be positive")

// Limiter spaces out requests to a single host.
// It is safe for concurrent use, though the crawler drives it from a
// single goroutine.
type Limiter struct {
	mu sync.Mutex

	// minInterval is the base interval derived from the configured rate.
	minInterval time.Duration

	// crawlDelay is the robots.txt Crawl-delay, zero when absent.
	crawlDelay time.Duration

	// last is when the previous request was released.
	last time.Time
}

// New creates a limiter allowing rps requests per second.
func New(rps float64) (*Limiter, error) {
	if rps <= 0 {
		return nil, ErrInvalidRate
	}
	return &Limiter{
		minInterval: time.Duration(float64(time.Second) / rps),
	}, nil
}

// SetCrawlDelay applies a robots.txt Crawl-delay. Negative values are
// clamped to zero (no delay override).
func (l *Limiter) SetCrawlDelay(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d < 0 {
		d = 0
	}
	l.crawlDelay = d
}

// Interval returns the effective interval between requests: the larger
// of the configured rate interval and the crawl delay.
func (l *Limiter) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval()
}

func (l *Limiter) interval() time.Duration {
	if l.crawlDelay > l.minInterval {
		return l.crawlDelay
	}
	return l.minInterval
}

// Wait blocks until the next request may be sent. The first call
// returns immediately. Wait returns early with the context error if
// the context is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.last.IsZero() {
		l.last = time.Now()
		return nil
	}

	remaining := l.interval() - time.Since(l.last)
	if remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.last = time.Now()
	return nil
}
