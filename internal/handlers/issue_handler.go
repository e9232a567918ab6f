package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

// IssueHandler exposes the issue tracker as one consolidated tool.
type IssueHandler struct {
	client *bitbucket.Client
}

func NewIssueHandler(client *bitbucket.Client) *IssueHandler {
	return &IssueHandler{client: client}
}

func (ih *IssueHandler) RegisterTools(s *server.MCPServer) error {
	tool := mcp.NewTool("bitbucket_issue",
		mcp.WithDescription("Work with the repository issue tracker. Read actions: list, get. Write actions (use ONLY after the human has explicitly confirmed): create, update."),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("list", "get", "create", "update"),
			mcp.Description("Operation to perform")),
		mcp.WithString("workspace", mcp.Required(), mcp.Description("Workspace slug")),
		mcp.WithString("repo_slug", mcp.Required(), mcp.Description("Repository slug")),
		mcp.WithNumber("id", mcp.Description("Issue ID (required for get and update)")),
		mcp.WithString("query", mcp.Description("Filter expression for list, e.g. state = \"open\"")),
		mcp.WithString("sort", mcp.Description("Sort field for list, e.g. -created_on")),
		mcp.WithString("title", mcp.Description("Issue title (create/update)")),
		mcp.WithString("content", mcp.Description("Issue body (create/update)")),
		mcp.WithString("kind", mcp.Description("bug, enhancement, task, or proposal (create/update)")),
		mcp.WithString("priority", mcp.Description("trivial, minor, major, critical, or blocker (create/update)")),
		mcp.WithString("state", mcp.Description("new, open, resolved, closed, etc. (update)")),
		mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
		mcp.WithNumber("pagelen", mcp.Description("Page size, max 100")),
	)

	s.AddTool(tool, ih.handle)
	return nil
}

func (ih *IssueHandler) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, _ := req.RequireString("action")
	workspace, _ := req.RequireString("workspace")
	repoSlug, _ := req.RequireString("repo_slug")
	id := optInt(req, "id")

	log.Debug().
		Str("action", action).
		Str("workspace", workspace).
		Str("repo_slug", repoSlug).
		Int("id", id).
		Msg("handling bitbucket_issue request")

	switch action {
	case "list":
		filter := bitbucket.IssueFilter{
			Query: optString(req, "query"),
			Sort:  optString(req, "sort"),
		}
		resp, err := ih.client.ListIssues(ctx, workspace, repoSlug, filter, pageOptions(req))
		if err != nil {
			log.Error().Err(err).Str("workspace", workspace).Str("repo_slug", repoSlug).Msg("list issues failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to list issues: %v", err)), nil
		}
		return resultJSON(listEnvelope(resp, compactIssue)), nil

	case "get":
		if id <= 0 {
			return mcp.NewToolResultError("id is required for action=get"), nil
		}
		issue, err := ih.client.GetIssue(ctx, workspace, repoSlug, id)
		if err != nil {
			log.Error().Err(err).Int("id", id).Msg("get issue failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to get issue: %v", err)), nil
		}
		return resultJSON(issue), nil

	case "create":
		createReq := bitbucket.CreateIssueRequest{
			Title:    optString(req, "title"),
			Kind:     optString(req, "kind"),
			Priority: optString(req, "priority"),
		}
		if content := optString(req, "content"); content != "" {
			createReq.Content = &bitbucket.Content{Raw: content}
		}
		issue, err := ih.client.CreateIssue(ctx, workspace, repoSlug, createReq)
		if err != nil {
			log.Error().Err(err).Str("title", createReq.Title).Msg("create issue failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to create issue: %v", err)), nil
		}
		return resultJSON(issue), nil

	case "update":
		if id <= 0 {
			return mcp.NewToolResultError("id is required for action=update"), nil
		}
		updateReq := bitbucket.UpdateIssueRequest{
			Title:    optString(req, "title"),
			State:    optString(req, "state"),
			Kind:     optString(req, "kind"),
			Priority: optString(req, "priority"),
		}
		if content := optString(req, "content"); content != "" {
			updateReq.Content = &bitbucket.Content{Raw: content}
		}
		issue, err := ih.client.UpdateIssue(ctx, workspace, repoSlug, id, updateReq)
		if err != nil {
			log.Error().Err(err).Int("id", id).Msg("update issue failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to update issue: %v", err)), nil
		}
		return resultJSON(issue), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}
