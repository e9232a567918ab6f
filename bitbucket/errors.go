package bitbucket

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for errors.Is checks. Every *Error unwraps to exactly one
// of these based on its Kind.
var (
	ErrAuth        = errors.New("authentication failed")
	ErrForbidden   = errors.New("permission denied")
	ErrNotFound    = errors.New("resource not found")
	ErrRateLimited = errors.New("rate limited")
	ErrValidation  = errors.New("invalid request")
	ErrConfig      = errors.New("configuration error")
	ErrTimeout     = errors.New("request timed out")
)

// Kind values are the stable machine-readable discriminant carried by every
// *Error. Callers switch on Kind (or use errors.Is against the sentinels)
// rather than parsing messages.
const (
	KindAuth        = "AUTH_FAILED"
	KindForbidden   = "FORBIDDEN"
	KindNotFound    = "NOT_FOUND"
	KindRateLimited = "RATE_LIMITED"
	KindValidation  = "VALIDATION_ERROR"
	KindConfig      = "CONFIG_ERROR"
	KindTimeout     = "TIMEOUT"
	KindAPI         = "API_ERROR"
)

// Error is the typed error produced for every failed Bitbucket call.
// Status is zero for local failures (configuration, timeout). RetryAfter is
// only set for 429 responses where the server stated a wait; zero means the
// server gave none.
type Error struct {
	Kind       string
	Message    string
	Status     int
	Endpoint   string
	RetryAfter time.Duration
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("bitbucket: %s (status %d, %s)", e.Message, e.Status, e.Endpoint)
	}
	return fmt.Sprintf("bitbucket: %s", e.Message)
}

// Unwrap maps the Kind to its sentinel so callers can use errors.Is without
// knowing the concrete type.
func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindAuth:
		return ErrAuth
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindRateLimited:
		return ErrRateLimited
	case KindValidation:
		return ErrValidation
	case KindConfig:
		return ErrConfig
	case KindTimeout:
		return ErrTimeout
	default:
		return nil
	}
}

// configError reports a local misconfiguration detected before any request
// is issued.
func configError(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(format, args...)}
}

// authError reports a credential failure that did not come from an HTTP
// status (e.g. token endpoint rejection).
func authError(format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(format, args...)}
}

// classify maps a non-2xx response to a typed error. It never fails: missing
// or unparseable body fields degrade to "Unknown error". The body map is the
// best-effort JSON decode of the response body (empty on parse failure).
func classify(status int, endpoint string, body map[string]any) *Error {
	switch status {
	case 401:
		return &Error{Kind: KindAuth, Message: bodyMessage(body), Status: status, Endpoint: endpoint, Details: body}
	case 403:
		return &Error{Kind: KindForbidden, Message: bodyMessage(body), Status: status, Endpoint: endpoint, Details: body}
	case 404:
		return &Error{Kind: KindNotFound, Message: fmt.Sprintf("resource not found: %s", endpoint), Status: status, Endpoint: endpoint, Details: body}
	case 429:
		e := &Error{Kind: KindRateLimited, Message: bodyMessage(body), Status: status, Endpoint: endpoint, Details: body}
		if ra, ok := body["retry_after"].(float64); ok {
			e.RetryAfter = time.Duration(ra * float64(time.Second))
		}
		return e
	case 400:
		return &Error{Kind: KindValidation, Message: bodyMessage(body), Status: status, Endpoint: endpoint, Details: body}
	default:
		return &Error{Kind: KindAPI, Message: bodyMessage(body), Status: status, Endpoint: endpoint, Details: body}
	}
}

// bodyMessage extracts the human-readable message from the two error body
// shapes Bitbucket uses: {"error": {"message": ...}} and {"message": ...}.
func bodyMessage(body map[string]any) string {
	if inner, ok := body["error"].(map[string]any); ok {
		if msg, ok := inner["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if msg, ok := body["message"].(string); ok && msg != "" {
		return msg
	}
	return "Unknown error"
}
