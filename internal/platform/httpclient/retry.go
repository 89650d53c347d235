package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jsamuelsen11/go-entity-routing/internal/platform/logging"
)

// jitter is the maximum deviation of a delay, as a fraction of it.
const jitter = 0.25

// policy is an exponential backoff retry policy.
type policy struct {
	attempts   int
	initial    time.Duration
	ceiling    time.Duration
	multiplier float64
}

// delay returns the wait before retry n (n >= 1): initial * multiplier^(n-1),
// capped at ceiling, then jittered by up to ±25%.
func (p policy) delay(n int) time.Duration {
	d := float64(p.initial) * math.Pow(p.multiplier, float64(n-1))
	d = min(d, float64(p.ceiling))
	d += d * jitter * (2*rand.Float64() - 1)
	return time.Duration(max(d, 0))
}

// send performs req up to p.attempts times. The body is buffered once and
// replayed on every attempt. The outcome is written through out so the
// caller owns closing it.
func (c *Client) send(ctx context.Context, req *http.Request, out **http.Response) error {
	if c.retry.attempts < 1 {
		return fmt.Errorf("httpclient: retry attempts must be >= 1, got %d", c.retry.attempts)
	}

	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return fmt.Errorf("reading request body: %w", err)
		}
		body = b
	}

	var lastErr error
	for attempt := range c.retry.attempts {
		if attempt > 0 {
			if err := c.backoff(ctx, req, attempt, lastErr); err != nil {
				return err
			}
		}
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
			req.ContentLength = int64(len(body))
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if !retryable(err) {
				return err
			}
			continue
		}
		if !retryableStatus(resp.StatusCode) {
			*out = resp
			return nil
		}

		lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.peer)
		if attempt == c.retry.attempts-1 {
			*out = resp
			return lastErr
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
	return lastErr
}

func (c *Client) backoff(ctx context.Context, req *http.Request, attempt int, lastErr error) error {
	wait := c.retry.delay(attempt)

	logging.FromContext(ctx).WarnContext(ctx, "retrying HTTP request",
		slog.String("operation", "httpclient.Do"),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.String("peer_service", c.peer),
		slog.Int("attempt", attempt+1),
		slog.Int("max_attempts", c.retry.attempts),
		slog.Duration("backoff", wait),
		slog.Any("error", lastErr),
	)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryable reports whether a transport error may succeed on retry.
// Cancellation and deadlines never do.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// retryableStatus is true for 429 and every 5xx.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
