package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

// CommitHandler exposes commit history as one consolidated tool.
type CommitHandler struct {
	client *bitbucket.Client
}

func NewCommitHandler(client *bitbucket.Client) *CommitHandler {
	return &CommitHandler{client: client}
}

func (ch *CommitHandler) RegisterTools(s *server.MCPServer) error {
	tool := mcp.NewTool("bitbucket_commit",
		mcp.WithDescription("Browse repository commits. action=list walks the history of a branch or revision, action=get fetches one commit by hash."),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("list", "get"),
			mcp.Description("Operation to perform")),
		mcp.WithString("workspace", mcp.Required(), mcp.Description("Workspace slug")),
		mcp.WithString("repo_slug", mcp.Required(), mcp.Description("Repository slug")),
		mcp.WithString("revision", mcp.Description("Branch, tag, or hash to start from (list; defaults to the main branch)")),
		mcp.WithString("hash", mcp.Description("Commit hash (required for get)")),
		mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
		mcp.WithNumber("pagelen", mcp.Description("Page size, max 100")),
	)

	s.AddTool(tool, ch.handle)
	return nil
}

func (ch *CommitHandler) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, _ := req.RequireString("action")
	workspace, _ := req.RequireString("workspace")
	repoSlug, _ := req.RequireString("repo_slug")

	log.Debug().
		Str("action", action).
		Str("workspace", workspace).
		Str("repo_slug", repoSlug).
		Msg("handling bitbucket_commit request")

	switch action {
	case "list":
		resp, err := ch.client.ListCommits(ctx, workspace, repoSlug, optString(req, "revision"), pageOptions(req))
		if err != nil {
			log.Error().Err(err).Str("workspace", workspace).Str("repo_slug", repoSlug).Msg("list commits failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to list commits: %v", err)), nil
		}
		return resultJSON(listEnvelope(resp, compactCommit)), nil

	case "get":
		hash := optString(req, "hash")
		if hash == "" {
			return mcp.NewToolResultError("hash is required for action=get"), nil
		}
		commit, err := ch.client.GetCommit(ctx, workspace, repoSlug, hash)
		if err != nil {
			log.Error().Err(err).Str("hash", hash).Msg("get commit failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to get commit: %v", err)), nil
		}
		return resultJSON(commit), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}
