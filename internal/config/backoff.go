package config

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

const (
	BASE_BACKOFF   = 1 * time.Second
	MAX_BACKOFF    = 2 * time.Minute
	BACKOFF_FACTOR = 2.0
	JITTER_FACTOR  = 0.5
)

// DoWithBackoff performs the request with exponential backoff and jitter
// between attempts. A response with a 5xx status counts as a failure and
// is retried. When maxRetries <= 0 the request is retried until the
// context is done.
func DoWithBackoff(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	backoff := BASE_BACKOFF
	var lastErr error

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.WithContext(ctx))
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}
		if err != nil {
			lastErr = err
		} else {
			resp.Body.Close()
			lastErr = fmt.Errorf("server returned status: %d", resp.StatusCode)
		}

		if maxRetries > 0 && attempt >= maxRetries {
			return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
		}

		jitter := time.Duration(rand.Float64() * float64(backoff) * JITTER_FACTOR)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff + jitter):
		}
		backoff = nextBackoffDelay(backoff)
	}
}

func nextBackoffDelay(backoff time.Duration) time.Duration {
	backoff = time.Duration(float64(backoff) * BACKOFF_FACTOR)
	if backoff >= MAX_BACKOFF {
		backoff = MAX_BACKOFF
	}
	return backoff
}
