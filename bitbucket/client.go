package bitbucket

import (
	"context"
	"net/http"
	"net/http/httputil"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL targets the Bitbucket Cloud v2 REST API.
const DefaultBaseURL = "https://api.bitbucket.org/2.0"

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Second
)

// --------------------------------------------------------------------
// debugTransport – optional HTTP round-trip logger
// --------------------------------------------------------------------

type debugTransport struct{ base http.RoundTripper }

func debugEnabled() bool {
	return os.Getenv("BITBUCKET_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if debugEnabled() {
		// Exclude the body: request payloads may carry credentials
		// (token endpoint form bodies).
		reqDump, err := httputil.DumpRequestOut(req, false)
		if err == nil {
			log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
		}
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		if debugEnabled() {
			log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		}
		return nil, err
	}

	if debugEnabled() {
		respDump, err := httputil.DumpResponse(resp, true)
		if err == nil {
			log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
		}
	}
	return resp, nil
}

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client is a typed Bitbucket API client. One instance serves all calls from
// one MCP server or CLI invocation; requests are issued sequentially per call
// site.
type Client struct {
	baseURL    string
	http       *http.Client
	auth       AuthProvider
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration

	sleep func(context.Context, time.Duration) error // overridable in tests
}

// New constructs a Client with optional functional arguments. base may be
// empty, in which case DefaultBaseURL is used.
func New(base string, opts ...Option) (*Client, error) {
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		baseURL:    base,
		http:       &http.Client{},
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		timeout:    defaultTimeout,
		sleep:      sleepContext,
	}

	// Auto-enable debug via env variable without changing code.
	if debugEnabled() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew constructs a Client with panic-on-error semantics (for testing).
func MustNew(base string, opts ...Option) *Client {
	c, err := New(base, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Auth returns the configured auth provider, nil for anonymous clients.
func (c *Client) Auth() AuthProvider { return c.auth }
