package t212

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds how often a rate-limited or failed request is repeated.
// Delays grow exponentially from BaseDelay and never exceed MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the broker's documented rate limits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// backoff builds the delay sequence for one request. A non-zero *hint (set
// from a Retry-After header) replaces the next computed delay once.
func (p RetryPolicy) backoff(hint *time.Duration) retry.Backoff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Millisecond
	}
	maxDelay := p.MaxDelay
	if maxDelay < base {
		maxDelay = base
	}

	b := retry.NewExponential(base)
	b = retry.WithCappedDuration(maxDelay, b)
	b = retry.WithMaxRetries(uint64(attempts-1), b)

	return retry.BackoffFunc(func() (time.Duration, bool) {
		next, stop := b.Next()
		if stop {
			return 0, true
		}
		if *hint > 0 {
			next = min(*hint, maxDelay)
			*hint = 0
		}
		return next, false
	})
}

// retryAfter parses a Retry-After header given in seconds.
// HTTP-date values are ignored and yield zero.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
