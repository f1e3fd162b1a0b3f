package spotify

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/avast/retry-go"
)

const (
	defaultMaxRetries = 3
	defaultBackoffMs  = 500
	maxRetryDelay     = 30 * time.Second
)

func getRetryConfig() (int, time.Duration) {
	maxRetries := defaultMaxRetries
	if raw := os.Getenv("SPOTIFY_MAX_RETRIES"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			maxRetries = parsed
		}
	}

	backoffMs := defaultBackoffMs
	if raw := os.Getenv("SPOTIFY_RETRY_BACKOFF_MS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			backoffMs = parsed
		}
	}

	return maxRetries, time.Duration(backoffMs) * time.Millisecond
}

// statusError is a retryable HTTP status.
type statusError struct {
	status     int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d", e.status)
}

// doRequestWithRetry sends a bodiless request, retrying transport errors,
// 429 and 5xx. Retry-After overrides the exponential backoff.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	maxRetries := c.maxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	baseBackoff := c.baseBackoff
	if baseBackoff <= 0 {
		baseBackoff = time.Duration(defaultBackoffMs) * time.Millisecond
	}

	ctx := req.Context()
	attempts := 0
	var resp *http.Response
	err := retry.Do(
		func() error {
			attempts++
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return retry.Unrecoverable(fmt.Errorf("rate limiter: %w", err))
				}
			}

			// #nosec G107 -- URL constructed from trusted Spotify API baseURL constant
			r, err := c.httpClient.Do(req)
			retryAfter, again := shouldRetry(r, err)
			if err != nil {
				if ctx.Err() != nil {
					return retry.Unrecoverable(err)
				}
				return err
			}
			if !again {
				resp = r
				return nil
			}
			_ = r.Body.Close()
			return &statusError{status: r.StatusCode, retryAfter: retryAfter}
		},
		retry.Context(ctx),
		retry.Attempts(uint(maxRetries)),
		retry.Delay(baseBackoff),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(func(n uint, err error, cfg *retry.Config) time.Duration {
			var se *statusError
			if errors.As(err, &se) && se.retryAfter > 0 {
				return se.retryAfter
			}
			return retry.BackOffDelay(n, err, cfg)
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log().Warn("spotify adapter: retry attempt", "attempt", n+1, "max", maxRetries, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: request failed after %d attempts: %w", attempts, err)
	}
	return resp, nil
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}

	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		until := time.Until(when)
		if until > 0 {
			return until
		}
	}

	return 0
}
