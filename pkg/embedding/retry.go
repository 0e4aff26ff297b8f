package embedding

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"regulation-chat-be/pkg/apperr"
)

const (
	maxAttempts   = 5
	retryBaseWait = 200 * time.Millisecond
	retryMaxWait  = 5 * time.Second
)

// doWithRetry executes call up to maxAttempts times, backing off exponentially
// between attempts. Only errors marked transient are retried; a Retry-After
// hint from the server overrides the computed wait.
func doWithRetry(ctx context.Context, call func() ([]float32, error)) ([]float32, error) {
	wait := retryBaseWait

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
			if wait > retryMaxWait {
				wait = retryMaxWait
			}
		}

		values, err := call()
		if err == nil {
			return values, nil
		}
		lastErr = err

		if !apperr.IsRetryable(err) {
			return nil, err
		}
		if hint := retryAfterHint(err); hint > 0 {
			wait = hint
			if wait > retryMaxWait {
				wait = retryMaxWait
			}
		}
	}
	return nil, lastErr
}

// retryAfterHint extracts a server-provided wait from an EmbeddingError, if
// the response carried one.
func retryAfterHint(err error) time.Duration {
	var embErr *apperr.EmbeddingError
	if !errors.As(err, &embErr) || embErr.RetryAfter == "" {
		return 0
	}
	if secs, convErr := strconv.Atoi(embErr.RetryAfter); convErr == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// isTransientStatus reports whether an HTTP status is worth retrying.
func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
