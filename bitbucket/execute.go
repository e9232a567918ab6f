package bitbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// RequestOptions describes a single API call. Constructed fresh per call by
// the endpoint wrappers.
type RequestOptions struct {
	Method string

	// Path is joined to the client base URL. An absolute URL (as returned
	// in pagination next/previous links) is followed verbatim.
	Path string

	Query   url.Values
	Body    any               // JSON-serializable, nil for no body
	Headers map[string]string // extra headers, merged last

	// Timeout overrides the client's per-attempt deadline when positive.
	Timeout time.Duration
}

// do executes one logical API call: auth header, header merge, bounded retry
// loop with per-attempt timeout, error classification, and body decode.
//
// Retry policy, per error class:
//   - 4xx other than 429: caller mistake, never retried.
//   - 429: retried within the attempt budget, waiting the server-stated
//     retry_after when given, the base retry delay otherwise.
//   - 5xx and transport failures: assumed transient, retried with
//     exponential backoff doubling from the base delay.
//   - per-attempt timeouts: attempt-fatal, never retried. Stacking retries
//     on top of an already slow backend compounds the wait.
func (c *Client) do(ctx context.Context, opts RequestOptions) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullURL, endpoint, err := c.resolveURL(opts)
	if err != nil {
		return nil, err
	}

	headers := make(http.Header)
	if c.auth != nil {
		h, err := c.auth.Header(ctx)
		if err != nil {
			return nil, err
		}
		headers.Set("Authorization", h)
	}
	headers.Set("Accept", "application/json")

	var body []byte
	if opts.Body != nil {
		body, err = json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		if opts.Method != http.MethodGet {
			headers.Set("Content-Type", "application/json")
		}
	}
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	sched := c.backoffSchedule()
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.attempt(ctx, opts.Method, fullURL, endpoint, body, headers, timeout)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		retry, wait := c.retryDecision(err, attempt, sched)
		if !retry {
			return nil, err
		}
		retriesTotal.WithLabelValues(retryReason(err)).Inc()
		log.Debug().
			Err(err).
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("retrying request")
		if serr := c.sleep(ctx, wait); serr != nil {
			return nil, serr
		}
	}
	// Unreachable while retryDecision bounds attempts, kept as a backstop.
	return nil, fmt.Errorf("request to %s failed after %d attempts: %w", endpoint, c.maxRetries+1, lastErr)
}

// doJSON runs do and decodes the response body into out (skipped when nil).
func (c *Client) doJSON(ctx context.Context, opts RequestOptions, out any) error {
	raw, err := c.do(ctx, opts)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", opts.Path, err)
	}
	return nil
}

// attempt performs exactly one HTTP round trip under its own deadline.
func (c *Client) attempt(ctx context.Context, method, fullURL, endpoint string, body []byte, headers http.Header, timeout time.Duration) (json.RawMessage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, fullURL, rdr)
	if err != nil {
		return nil, configError("build request for %s: %v", endpoint, err)
	}
	req.Header = headers.Clone()

	resp, err := c.http.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		return nil, c.transportError(ctx, attemptCtx, endpoint, timeout, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		return nil, c.transportError(ctx, attemptCtx, endpoint, timeout, err)
	}
	requestsTotal.WithLabelValues(method, statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Best-effort body parse; the status code stays authoritative.
		bodyMap := map[string]any{}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &bodyMap)
		}
		return nil, classify(resp.StatusCode, endpoint, bodyMap)
	}

	if resp.StatusCode == http.StatusNoContent || len(raw) == 0 || resp.Header.Get("Content-Type") == "" {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(raw), nil
}

// transportError tells apart caller cancellation, the per-attempt deadline,
// and genuine transport failures (network, DNS, TLS).
func (c *Client) transportError(ctx, attemptCtx context.Context, endpoint string, timeout time.Duration, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &Error{
			Kind:     KindTimeout,
			Message:  fmt.Sprintf("request to %s timed out after %s", endpoint, timeout),
			Endpoint: endpoint,
		}
	}
	return fmt.Errorf("transport: %w", err)
}

// retryDecision decides whether to retry and what to wait for. Whether to
// retry is purely error-class-based; the wait source (server-stated
// retry_after vs the exponential schedule) is orthogonal.
func (c *Client) retryDecision(err error, attempt int, sched backoff.BackOff) (bool, time.Duration) {
	if attempt >= c.maxRetries {
		return false, 0
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case KindRateLimited:
			rateLimitWaitsTotal.Inc()
			if apiErr.RetryAfter > 0 {
				return true, apiErr.RetryAfter
			}
			return true, c.retryDelay
		case KindAPI:
			// 5xx is assumed transient. Remaining 4xx statuses land
			// here too and are caller mistakes, same as 400/401/403/404.
			if apiErr.Status >= 500 {
				return true, sched.NextBackOff()
			}
			return false, 0
		default:
			// Timeouts, auth, not-found, validation, config: fatal.
			return false, 0
		}
	}
	// Transport-level failure.
	return true, sched.NextBackOff()
}

func (c *Client) backoffSchedule() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = 60 * time.Second
	b.MaxElapsedTime = 0 // bounded by maxRetries, not wall time
	b.Reset()
	return b
}

func (c *Client) resolveURL(opts RequestOptions) (fullURL, endpoint string, err error) {
	if strings.HasPrefix(opts.Path, "http://") || strings.HasPrefix(opts.Path, "https://") {
		u, err := url.Parse(opts.Path)
		if err != nil {
			return "", "", configError("malformed request URL %q: %v", opts.Path, err)
		}
		// Server-provided pagination links are followed verbatim; extra
		// query parameters are merged on top.
		if len(opts.Query) > 0 {
			q := u.Query()
			for k, vs := range opts.Query {
				for _, v := range vs {
					q.Set(k, v)
				}
			}
			u.RawQuery = q.Encode()
		}
		return u.String(), u.Path, nil
	}

	p := opts.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	full := c.baseURL + p
	if len(opts.Query) > 0 {
		full += "?" + opts.Query.Encode()
	}
	return full, p, nil
}

func retryReason(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Kind == KindRateLimited {
			return "rate_limit"
		}
		return "server_error"
	}
	return "transport"
}

func statusClass(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
