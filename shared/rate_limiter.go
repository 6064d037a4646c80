package shared

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestRateLimiter enforces a minimum delay between requests to one
// source. Pagination within a source run is sequential, so a single limiter
// per source is enough.
type RequestRateLimiter struct {
	minimumDelay    time.Duration
	lastRequestTime time.Time
	mutex           sync.Mutex
	requestCount    int64
}

// NewRequestRateLimiter creates a new rate limiter with the specified
// minimum delay between requests.
func NewRequestRateLimiter(minimumDelay time.Duration) *RequestRateLimiter {
	return &RequestRateLimiter{
		minimumDelay:    minimumDelay,
		lastRequestTime: time.Now().Add(-minimumDelay),
	}
}

// Wait blocks until the minimum delay has elapsed since the last request, or
// until the context is cancelled.
func (limiter *RequestRateLimiter) Wait(ctx context.Context) error {
	limiter.mutex.Lock()
	elapsedTime := time.Since(limiter.lastRequestTime)
	remainingDelay := limiter.minimumDelay - elapsedTime
	limiter.mutex.Unlock()

	if remainingDelay > 0 {
		logrus.WithFields(logrus.Fields{
			"component":       "RequestRateLimiter",
			"remaining_delay": remainingDelay,
		}).Debug("Enforcing rate limit delay")

		select {
		case <-time.After(remainingDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	limiter.mutex.Lock()
	limiter.lastRequestTime = time.Now()
	limiter.requestCount++
	limiter.mutex.Unlock()
	return nil
}

// RequestCount returns the total number of requests processed.
func (limiter *RequestRateLimiter) RequestCount() int64 {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	return limiter.requestCount
}

// UpdateMinimumDelay updates the minimum delay between requests.
func (limiter *RequestRateLimiter) UpdateMinimumDelay(newDelay time.Duration) {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	limiter.minimumDelay = newDelay
}
