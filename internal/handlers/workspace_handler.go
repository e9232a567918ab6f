package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

// WorkspaceHandler exposes workspace operations as one consolidated tool.
type WorkspaceHandler struct {
	client *bitbucket.Client
}

func NewWorkspaceHandler(client *bitbucket.Client) *WorkspaceHandler {
	return &WorkspaceHandler{client: client}
}

func (wh *WorkspaceHandler) RegisterTools(s *server.MCPServer) error {
	tool := mcp.NewTool("bitbucket_workspace",
		mcp.WithDescription("Work with Bitbucket workspaces. action=list enumerates workspaces visible to the authenticated user, action=get fetches one workspace, action=members lists its members."),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("list", "get", "members"),
			mcp.Description("Operation to perform")),
		mcp.WithString("workspace", mcp.Description("Workspace slug (required for get and members)")),
		mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
		mcp.WithNumber("pagelen", mcp.Description("Page size, max 100")),
	)

	s.AddTool(tool, wh.handle)
	return nil
}

func (wh *WorkspaceHandler) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, _ := req.RequireString("action")

	log.Debug().Str("action", action).Msg("handling bitbucket_workspace request")

	switch action {
	case "list":
		resp, err := wh.client.ListWorkspaces(ctx, pageOptions(req))
		if err != nil {
			log.Error().Err(err).Msg("list workspaces failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to list workspaces: %v", err)), nil
		}
		return resultJSON(listEnvelope(resp, compactWorkspace)), nil

	case "get":
		workspace := optString(req, "workspace")
		if workspace == "" {
			return mcp.NewToolResultError("workspace is required for action=get"), nil
		}
		ws, err := wh.client.GetWorkspace(ctx, workspace)
		if err != nil {
			log.Error().Err(err).Str("workspace", workspace).Msg("get workspace failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to get workspace: %v", err)), nil
		}
		return resultJSON(ws), nil

	case "members":
		workspace := optString(req, "workspace")
		if workspace == "" {
			return mcp.NewToolResultError("workspace is required for action=members"), nil
		}
		resp, err := wh.client.ListWorkspaceMembers(ctx, workspace, pageOptions(req))
		if err != nil {
			log.Error().Err(err).Str("workspace", workspace).Msg("list workspace members failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to list workspace members: %v", err)), nil
		}
		return resultJSON(resp), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q: expected list, get, or members", action)), nil
	}
}
