package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

// BranchHandler exposes branch operations as one consolidated tool.
type BranchHandler struct {
	client *bitbucket.Client
}

func NewBranchHandler(client *bitbucket.Client) *BranchHandler {
	return &BranchHandler{client: client}
}

func (bh *BranchHandler) RegisterTools(s *server.MCPServer) error {
	tool := mcp.NewTool("bitbucket_branch",
		mcp.WithDescription("Work with repository branches. Read actions: list, get. Write actions (use ONLY after the human has explicitly confirmed): create, delete."),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("list", "get", "create", "delete"),
			mcp.Description("Operation to perform")),
		mcp.WithString("workspace", mcp.Required(), mcp.Description("Workspace slug")),
		mcp.WithString("repo_slug", mcp.Required(), mcp.Description("Repository slug")),
		mcp.WithString("name", mcp.Description("Branch name (required for get, create, delete)")),
		mcp.WithString("target", mcp.Description("Commit hash the new branch points at (create)")),
		mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
		mcp.WithNumber("pagelen", mcp.Description("Page size, max 100")),
	)

	s.AddTool(tool, bh.handle)
	return nil
}

func (bh *BranchHandler) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, _ := req.RequireString("action")
	workspace, _ := req.RequireString("workspace")
	repoSlug, _ := req.RequireString("repo_slug")
	name := optString(req, "name")

	log.Debug().
		Str("action", action).
		Str("workspace", workspace).
		Str("repo_slug", repoSlug).
		Str("name", name).
		Msg("handling bitbucket_branch request")

	switch action {
	case "list":
		resp, err := bh.client.ListBranches(ctx, workspace, repoSlug, pageOptions(req))
		if err != nil {
			log.Error().Err(err).Str("workspace", workspace).Str("repo_slug", repoSlug).Msg("list branches failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to list branches: %v", err)), nil
		}
		return resultJSON(listEnvelope(resp, compactBranch)), nil

	case "get":
		if name == "" {
			return mcp.NewToolResultError("name is required for action=get"), nil
		}
		branch, err := bh.client.GetBranch(ctx, workspace, repoSlug, name)
		if err != nil {
			log.Error().Err(err).Str("name", name).Msg("get branch failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to get branch: %v", err)), nil
		}
		return resultJSON(branch), nil

	case "create":
		if name == "" {
			return mcp.NewToolResultError("name is required for action=create"), nil
		}
		target := optString(req, "target")
		if target == "" {
			return mcp.NewToolResultError("target commit hash is required for action=create"), nil
		}
		branch, err := bh.client.CreateBranch(ctx, workspace, repoSlug, bitbucket.CreateBranchRequest{
			Name:   name,
			Target: bitbucket.CommitRef{Hash: target},
		})
		if err != nil {
			log.Error().Err(err).Str("name", name).Msg("create branch failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to create branch: %v", err)), nil
		}
		return resultJSON(branch), nil

	case "delete":
		if name == "" {
			return mcp.NewToolResultError("name is required for action=delete"), nil
		}
		if err := bh.client.DeleteBranch(ctx, workspace, repoSlug, name); err != nil {
			log.Error().Err(err).Str("name", name).Msg("delete branch failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete branch: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Branch %s deleted", name)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}
