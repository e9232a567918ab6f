package handlers

import (
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

// Argument helpers. MCP tool arguments arrive as a generic JSON map; numbers
// are float64.

func optString(req mcp.CallToolRequest, key string) string {
	if v, ok := req.GetArguments()[key].(string); ok {
		return v
	}
	return ""
}

func optInt(req mcp.CallToolRequest, key string) int {
	if v, ok := req.GetArguments()[key].(float64); ok {
		return int(v)
	}
	return 0
}

func optBool(req mcp.CallToolRequest, key string) bool {
	if v, ok := req.GetArguments()[key].(bool); ok {
		return v
	}
	return false
}

func pageOptions(req mcp.CallToolRequest) bitbucket.PageOptions {
	return bitbucket.PageOptions{
		Page:    optInt(req, "page"),
		Pagelen: optInt(req, "pagelen"),
	}
}

// resultJSON renders any value as an indented JSON tool result.
func resultJSON(v any) *mcp.CallToolResult {
	b, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(b))
}

// listEnvelope re-wraps a paginated response with compacted values so agents
// see page cursors without the full resource payloads.
func listEnvelope[T any, C any](p *bitbucket.Paginated[T], compact func(T) C) map[string]any {
	values := make([]C, 0, len(p.Values))
	for _, v := range p.Values {
		values = append(values, compact(v))
	}
	out := map[string]any{"values": values}
	if p.Size > 0 {
		out["size"] = p.Size
	}
	if p.Page > 0 {
		out["page"] = p.Page
	}
	if p.Next != "" {
		out["next"] = p.Next
	}
	return out
}

// Compact projections: the handful of fields an agent needs to pick a
// resource out of a listing.

func compactRepository(r bitbucket.Repository) map[string]any {
	out := map[string]any{
		"slug":       r.Slug,
		"full_name":  r.FullName,
		"is_private": r.IsPrivate,
	}
	if r.Description != "" {
		out["description"] = r.Description
	}
	if r.Language != "" {
		out["language"] = r.Language
	}
	if r.MainBranch != nil {
		out["mainbranch"] = r.MainBranch.Name
	}
	if r.UpdatedOn != nil {
		out["updated_on"] = r.UpdatedOn.Format(time.RFC3339)
	}
	return out
}

func compactPullRequest(pr bitbucket.PullRequest) map[string]any {
	out := map[string]any{
		"id":          pr.ID,
		"title":       pr.Title,
		"state":       pr.State,
		"source":      pr.Source.Branch.Name,
		"destination": pr.Destination.Branch.Name,
	}
	if pr.Author != nil {
		out["author"] = pr.Author.DisplayName
	}
	if pr.CommentCount > 0 {
		out["comment_count"] = pr.CommentCount
	}
	if pr.UpdatedOn != nil {
		out["updated_on"] = pr.UpdatedOn.Format(time.RFC3339)
	}
	return out
}

func compactBranch(b bitbucket.Branch) map[string]any {
	out := map[string]any{"name": b.Name}
	if b.Target != nil {
		out["target"] = b.Target.Hash
	}
	return out
}

func compactCommit(c bitbucket.Commit) map[string]any {
	out := map[string]any{
		"hash":    c.Hash,
		"message": firstLine(c.Message),
	}
	if c.Author != nil {
		if c.Author.User != nil {
			out["author"] = c.Author.User.DisplayName
		} else {
			out["author"] = c.Author.Raw
		}
	}
	if c.Date != nil {
		out["date"] = c.Date.Format(time.RFC3339)
	}
	return out
}

func compactPipeline(p bitbucket.Pipeline) map[string]any {
	out := map[string]any{
		"uuid":         p.UUID,
		"build_number": p.BuildNumber,
	}
	if p.State != nil {
		out["state"] = p.State.Name
		if p.State.Result != nil {
			out["result"] = p.State.Result.Name
		}
	}
	if p.Target != nil && p.Target.RefName != "" {
		out["ref"] = p.Target.RefName
	}
	if p.CreatedOn != nil {
		out["created_on"] = p.CreatedOn.Format(time.RFC3339)
	}
	return out
}

func compactIssue(i bitbucket.Issue) map[string]any {
	out := map[string]any{
		"id":    i.ID,
		"title": i.Title,
		"state": i.State,
		"kind":  i.Kind,
	}
	if i.Priority != "" {
		out["priority"] = i.Priority
	}
	if i.Assignee != nil {
		out["assignee"] = i.Assignee.DisplayName
	}
	return out
}

func compactWebhook(w bitbucket.Webhook) map[string]any {
	return map[string]any{
		"uuid":   w.UUID,
		"url":    w.URL,
		"active": w.Active,
		"events": w.Events,
	}
}

func compactWorkspace(w bitbucket.Workspace) map[string]any {
	return map[string]any{
		"slug": w.Slug,
		"name": w.Name,
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
