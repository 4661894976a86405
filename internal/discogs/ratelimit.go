package discogs

import (
	"context"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Backoff configuration for Discogs API calls.
const (
	MaxThrottleWait  = 60 * time.Second
	MaxTransientWait = 30 * time.Second
	throttleBase     = 5 * time.Second
	throttleJitter   = 5 * time.Second
	transientBase    = 2 * time.Second
	transientJitter  = time.Second
)

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ThrottleWait computes how long to wait after the n-th consecutive 429
// (zero based): min(60s, 2^n*5s + jitter), where jitter is in [0, 5s).
func ThrottleWait(n int, jitter time.Duration) time.Duration {
	return capped(exponential(throttleBase, n)+jitter, MaxThrottleWait)
}

// TransientWait computes the pause after the n-th failed attempt (zero
// based): min(30s, 2^n*2s) plus jitter in [0, 1s).
func TransientWait(n int, jitter time.Duration) time.Duration {
	return capped(exponential(transientBase, n), MaxTransientWait) + jitter
}

// RetryAfter parses a Retry-After header in either delta-seconds or HTTP-date
// form. The result is capped at MaxThrottleWait.
func RetryAfter(header http.Header, now time.Time) (time.Duration, bool) {
	value := strings.TrimSpace(header.Get("Retry-After"))
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return capped(time.Duration(secs)*time.Second, MaxThrottleWait), true
	}
	if at, err := http.ParseTime(value); err == nil {
		wait := at.Sub(now)
		if wait < 0 {
			wait = 0
		}
		return capped(wait, MaxThrottleWait), true
	}
	return 0, false
}

// SubFetchDelay is the pause between requests made while resolving a single
// item: half the configured delay, never below 500ms.
func SubFetchDelay(delay time.Duration) time.Duration {
	half := delay / 2
	if half < 500*time.Millisecond {
		return 500 * time.Millisecond
	}
	return half
}

func exponential(base time.Duration, n int) time.Duration {
	if n < 0 {
		n = 0
	}
	if n > 10 {
		n = 10
	}
	return time.Duration(float64(base) * math.Pow(2, float64(n)))
}

func capped(d, limit time.Duration) time.Duration {
	if d > limit {
		return limit
	}
	return d
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(limit)))
}
