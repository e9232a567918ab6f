package handlers

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

func callReq(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestArgumentHelpers(t *testing.T) {
	req := callReq(map[string]any{
		"name":  "widget",
		"page":  float64(3),
		"flag":  true,
		"wrong": 7,
	})

	if got := optString(req, "name"); got != "widget" {
		t.Fatalf("optString = %q", got)
	}
	if got := optString(req, "missing"); got != "" {
		t.Fatalf("optString for missing key = %q", got)
	}
	if got := optInt(req, "page"); got != 3 {
		t.Fatalf("optInt = %d", got)
	}
	if got := optInt(req, "wrong"); got != 0 {
		t.Fatalf("optInt for non-float64 = %d", got)
	}
	if !optBool(req, "flag") {
		t.Fatal("optBool returned false for true value")
	}
	if optBool(req, "missing") {
		t.Fatal("optBool returned true for missing key")
	}
}

func TestPageOptionsFromRequest(t *testing.T) {
	req := callReq(map[string]any{"page": float64(2), "pagelen": float64(50)})
	opts := pageOptions(req)
	if opts.Page != 2 || opts.Pagelen != 50 {
		t.Fatalf("unexpected options %+v", opts)
	}

	empty := pageOptions(callReq(nil))
	if empty.Page != 0 || empty.Pagelen != 0 {
		t.Fatalf("expected zero options, got %+v", empty)
	}
}

func TestListEnvelopeCompactsValues(t *testing.T) {
	p := &bitbucket.Paginated[bitbucket.Workspace]{
		Size: 2,
		Page: 1,
		Next: "https://api.bitbucket.org/2.0/workspaces?page=2",
		Values: []bitbucket.Workspace{
			{Slug: "acme", Name: "Acme"},
			{Slug: "beta", Name: "Beta"},
		},
	}

	out := listEnvelope(p, compactWorkspace)
	values, ok := out["values"].([]map[string]any)
	if !ok || len(values) != 2 {
		t.Fatalf("unexpected values %v", out["values"])
	}
	if values[0]["slug"] != "acme" {
		t.Fatalf("unexpected first value %v", values[0])
	}
	if out["next"] != p.Next || out["size"] != 2 || out["page"] != 1 {
		t.Fatalf("envelope metadata missing: %v", out)
	}
}

func TestListEnvelopeOmitsEmptyCursor(t *testing.T) {
	p := &bitbucket.Paginated[bitbucket.Workspace]{Values: nil}
	out := listEnvelope(p, compactWorkspace)
	if _, ok := out["next"]; ok {
		t.Fatal("next must be omitted when empty")
	}
	if _, ok := out["size"]; ok {
		t.Fatal("size must be omitted when zero")
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("subject\n\nbody"); got != "subject" {
		t.Fatalf("firstLine = %q", got)
	}
	if got := firstLine("one liner"); got != "one liner" {
		t.Fatalf("firstLine = %q", got)
	}
}

func TestCompactCommitAuthorFallback(t *testing.T) {
	c := bitbucket.Commit{
		Hash:    "abc123",
		Message: "Fix parser\n\ndetails",
		Author:  &bitbucket.CommitAuthor{Raw: "Alice <alice@example.com>"},
	}
	out := compactCommit(c)
	if out["author"] != "Alice <alice@example.com>" {
		t.Fatalf("expected raw author fallback, got %v", out["author"])
	}
	if out["message"] != "Fix parser" {
		t.Fatalf("expected first line only, got %v", out["message"])
	}
}
