package bitbucket

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"time"
)

// Option mutates the Client during New().
type Option func(*Client) error

// WithHTTPClient injects a custom *http.Client. Useful for setting transport
// timeouts, tracing, custom TLS settings, etc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		c.http = hc
		return nil
	}
}

// WithAuth installs the credential provider used for every request.
func WithAuth(p AuthProvider) Option {
	return func(c *Client) error {
		if p == nil {
			return fmt.Errorf("nil auth provider")
		}
		c.auth = p
		return nil
	}
}

// WithTimeout sets the per-attempt request deadline. Individual calls may
// still override it through RequestOptions.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		c.timeout = d
		return nil
	}
}

// WithMaxRetries bounds the retry loop: a call makes at most 1+n attempts.
func WithMaxRetries(n int) Option {
	return func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("max retries must not be negative")
		}
		c.maxRetries = n
		return nil
	}
}

// WithRetryDelay sets the base delay for the exponential backoff schedule
// and the fallback wait for rate-limit responses without a retry_after.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("retry delay must be positive")
		}
		c.retryDelay = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport such that every request/response
// is logged when `enabled` is true.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			transport := c.http.Transport
			if transport == nil {
				transport = http.DefaultTransport
			}
			c.http.Transport = &debugTransport{base: transport}
		}
		return nil
	}
}
