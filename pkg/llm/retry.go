package llm

import (
	"context"
	"strconv"
	"time"
)

const (
	// MaxRateLimitRetries is how many times a throttled request is retried
	// before giving up with ErrRateLimited.
	MaxRateLimitRetries = 3

	baseBackoff = 500 * time.Millisecond
)

// RetryDelay computes the wait before retry attempt (zero-based). A
// Retry-After header value in seconds takes precedence over the exponential
// backoff schedule.
func RetryDelay(attempt int, retryAfter string) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return baseBackoff << attempt
}

// SleepContext waits for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
