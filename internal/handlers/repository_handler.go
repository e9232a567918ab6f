package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

// RepositoryHandler exposes repository operations as one consolidated tool.
type RepositoryHandler struct {
	client *bitbucket.Client
}

// NewRepositoryHandler creates a new repository handler instance.
func NewRepositoryHandler(client *bitbucket.Client) *RepositoryHandler {
	return &RepositoryHandler{client: client}
}

// RegisterTools registers the bitbucket_repository tool with the MCP server.
func (rh *RepositoryHandler) RegisterTools(s *server.MCPServer) error {
	tool := mcp.NewTool("bitbucket_repository",
		mcp.WithDescription("Work with Bitbucket repositories. Use action=list to enumerate repositories in a workspace (optionally filtered), action=get for full details of one repository."),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("list", "get"),
			mcp.Description("Operation to perform")),
		mcp.WithString("workspace", mcp.Required(), mcp.Description("Workspace slug")),
		mcp.WithString("repo_slug", mcp.Description("Repository slug (required for get)")),
		mcp.WithString("role", mcp.Description("Filter by caller role: owner, admin, contributor, member")),
		mcp.WithString("query", mcp.Description("Bitbucket filter expression, e.g. name ~ \"api\"")),
		mcp.WithString("sort", mcp.Description("Sort field, e.g. -updated_on")),
		mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
		mcp.WithNumber("pagelen", mcp.Description("Page size, max 100")),
	)

	s.AddTool(tool, rh.handle)
	return nil
}

func (rh *RepositoryHandler) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, _ := req.RequireString("action")
	workspace, _ := req.RequireString("workspace")

	log.Debug().
		Str("action", action).
		Str("workspace", workspace).
		Msg("handling bitbucket_repository request")

	start := time.Now()
	switch action {
	case "list":
		filter := bitbucket.RepositoryFilter{
			Role:  optString(req, "role"),
			Query: optString(req, "query"),
			Sort:  optString(req, "sort"),
		}
		resp, err := rh.client.ListRepositories(ctx, workspace, filter, pageOptions(req))
		if err != nil {
			log.Error().Err(err).Str("workspace", workspace).Dur("elapsed", time.Since(start)).Msg("list repositories failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to list repositories: %v", err)), nil
		}
		return resultJSON(listEnvelope(resp, compactRepository)), nil

	case "get":
		repoSlug := optString(req, "repo_slug")
		if repoSlug == "" {
			return mcp.NewToolResultError("repo_slug is required for action=get"), nil
		}
		repo, err := rh.client.GetRepository(ctx, workspace, repoSlug)
		if err != nil {
			log.Error().Err(err).Str("workspace", workspace).Str("repo_slug", repoSlug).Dur("elapsed", time.Since(start)).Msg("get repository failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to get repository: %v", err)), nil
		}
		return resultJSON(repo), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q: expected list or get", action)), nil
	}
}
