package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return tc.Text
}

func TestAllHandlersRegister(t *testing.T) {
	client := bitbucket.MustNew("https://example.invalid")
	s := server.NewMCPServer("test", "0.0.1", server.WithToolCapabilities(true))

	handlers := []interface {
		RegisterTools(s *server.MCPServer) error
	}{
		NewWorkspaceHandler(client),
		NewRepositoryHandler(client),
		NewPullRequestHandler(client),
		NewBranchHandler(client),
		NewCommitHandler(client),
		NewPipelineHandler(client),
		NewIssueHandler(client),
		NewWebhookHandler(client),
	}
	for _, h := range handlers {
		if err := h.RegisterTools(s); err != nil {
			t.Fatalf("RegisterTools(%T): %v", h, err)
		}
	}
}

func TestWorkspaceHandlerList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workspaces" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"size":1,"page":1,"values":[{"slug":"acme","name":"Acme"}]}`))
	}))
	defer srv.Close()

	wh := NewWorkspaceHandler(bitbucket.MustNew(srv.URL))

	result, err := wh.handle(context.Background(), callReq(map[string]any{"action": "list"}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", textContent(t, result))
	}
	if body := textContent(t, result); !strings.Contains(body, `"acme"`) {
		t.Fatalf("result should include the workspace slug, got %s", body)
	}
}

func TestWorkspaceHandlerGetRequiresSlug(t *testing.T) {
	wh := NewWorkspaceHandler(bitbucket.MustNew("https://example.invalid"))

	result, err := wh.handle(context.Background(), callReq(map[string]any{"action": "get"}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing workspace")
	}
}

func TestWorkspaceHandlerUnknownAction(t *testing.T) {
	wh := NewWorkspaceHandler(bitbucket.MustNew("https://example.invalid"))

	result, err := wh.handle(context.Background(), callReq(map[string]any{"action": "destroy"}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for unknown action")
	}
	if body := textContent(t, result); !strings.Contains(body, "destroy") {
		t.Fatalf("error should echo the bad action, got %s", body)
	}
}

func TestPullRequestHandlerAPIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"Repository not found"}}`))
	}))
	defer srv.Close()

	ph := NewPullRequestHandler(bitbucket.MustNew(srv.URL))

	result, err := ph.handle(context.Background(), callReq(map[string]any{
		"action":    "get",
		"workspace": "acme",
		"repo_slug": "gone",
		"id":        float64(7),
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for 404")
	}
	if body := textContent(t, result); !strings.Contains(body, "not found") {
		t.Fatalf("error should carry the API message, got %s", body)
	}
}

func TestWebhookHandlerCreateParsesEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uuid":"{7f000001-0000-0000-0000-000000000001}","url":"https://hooks.example.com","active":true,"events":["repo:push","pullrequest:created"]}`))
	}))
	defer srv.Close()

	wh := NewWebhookHandler(bitbucket.MustNew(srv.URL))

	result, err := wh.handle(context.Background(), callReq(map[string]any{
		"action":    "create",
		"workspace": "acme",
		"repo_slug": "widget",
		"url":       "https://hooks.example.com",
		"events":    "repo:push, pullrequest:created",
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", textContent(t, result))
	}
}
