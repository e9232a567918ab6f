package bitbucket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestClient builds a client against srv with instant retries and records
// every backoff wait through the sleep hook.
func newTestClient(t *testing.T, srv *httptest.Server, waits *[]time.Duration, opts ...Option) *Client {
	t.Helper()
	c, err := New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.sleep = func(ctx context.Context, d time.Duration) error {
		if waits != nil {
			*waits = append(*waits, d)
		}
		return nil
	}
	return c
}

func TestDoSendsAuthAndAcceptHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected Authorization 'Bearer tok', got %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected Accept application/json, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	auth, _ := NewBearerAuth("tok")
	c := newTestClient(t, srv, nil, WithAuth(auth))

	var out map[string]bool
	if err := c.doJSON(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/workspaces"}, &out); err != nil {
		t.Fatalf("doJSON: %v", err)
	}
	if !out["ok"] {
		t.Fatalf("unexpected body: %v", out)
	}
}

func TestDoRetriesServerErrorsWithBackoff(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"slug":"widget"}`))
	}))
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, srv, &waits, WithRetryDelay(100*time.Millisecond))

	var out Repository
	if err := c.doJSON(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/repositories/acme/widget"}, &out); err != nil {
		t.Fatalf("doJSON: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	// Exponential doubling from the base delay, no jitter.
	if len(waits) != 2 || waits[0] != 100*time.Millisecond || waits[1] != 200*time.Millisecond {
		t.Fatalf("expected waits [100ms 200ms], got %v", waits)
	}
	if out.Slug != "widget" {
		t.Fatalf("unexpected repository: %+v", out)
	}
}

func TestDoHonorsServerRetryAfter(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"slow down","retry_after":2}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, srv, &waits)

	if _, err := c.do(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/workspaces"}); err != nil {
		t.Fatalf("do: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if len(waits) != 1 || waits[0] != 2*time.Second {
		t.Fatalf("expected the server-stated 2s wait, got %v", waits)
	}
}

func TestDoRateLimitWithoutRetryAfterUsesBaseDelay(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"slow down"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, srv, &waits, WithRetryDelay(50*time.Millisecond))

	if _, err := c.do(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/workspaces"}); err != nil {
		t.Fatalf("do: %v", err)
	}
	if len(waits) != 1 || waits[0] != 50*time.Millisecond {
		t.Fatalf("expected the base retry delay, got %v", waits)
	}
}

func TestDoNeverRetriesClientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"Repository not found"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)

	_, err := c.do(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/repositories/acme/gone"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("404 must not be retried, got %d attempts", calls)
	}
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil, WithMaxRetries(2))

	_, err := c.do(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/workspaces"})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Fatalf("expected the final 502 surfaced, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 1+2 attempts, got %d", calls)
	}
}

func TestDoTimeoutIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil, WithTimeout(20*time.Millisecond))

	_, err := c.do(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/workspaces"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("timeouts must not be retried, got %d attempts", calls)
	}
}

func TestDoCallerCancellationWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.do(ctx, RequestOptions{Method: http.MethodGet, Path: "/workspaces"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the caller's context error, got %v", err)
	}
}

func TestDoEmptyBodyYieldsEmptyObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)

	raw, err := c.do(context.Background(), RequestOptions{Method: http.MethodDelete, Path: "/repositories/acme/widget/hooks/{x}"})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if string(raw) != "{}" {
		t.Fatalf("expected empty object, got %s", raw)
	}
}

func TestDoPostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected Content-Type application/json, got %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["title"] != "Add feature" {
			t.Errorf("unexpected body: %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)

	var out PullRequest
	err := c.doJSON(context.Background(), RequestOptions{
		Method: http.MethodPost,
		Path:   "/repositories/acme/widget/pullrequests",
		Body:   map[string]string{"title": "Add feature"},
	}, &out)
	if err != nil {
		t.Fatalf("doJSON: %v", err)
	}
	if out.ID != 7 {
		t.Fatalf("expected id 7, got %d", out.ID)
	}
}

func TestResolveURLFollowsAbsoluteLinks(t *testing.T) {
	c := MustNew("https://api.bitbucket.org/2.0")

	full, endpoint, err := c.resolveURL(RequestOptions{
		Path: "https://api.bitbucket.org/2.0/repositories/acme?page=2&pagelen=25",
	})
	if err != nil {
		t.Fatalf("resolveURL: %v", err)
	}
	if full != "https://api.bitbucket.org/2.0/repositories/acme?page=2&pagelen=25" {
		t.Fatalf("unexpected URL %q", full)
	}
	if endpoint != "/2.0/repositories/acme" {
		t.Fatalf("unexpected endpoint %q", endpoint)
	}
}

func TestResolveURLJoinsRelativePaths(t *testing.T) {
	c := MustNew("https://example.com/2.0")

	full, endpoint, err := c.resolveURL(RequestOptions{Path: "workspaces", Query: PageOptions{Pagelen: 10}.Query()})
	if err != nil {
		t.Fatalf("resolveURL: %v", err)
	}
	if full != "https://example.com/2.0/workspaces?pagelen=10" {
		t.Fatalf("unexpected URL %q", full)
	}
	if endpoint != "/workspaces" {
		t.Fatalf("unexpected endpoint %q", endpoint)
	}
}
