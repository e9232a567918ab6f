package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

// PipelineHandler exposes pipeline runs as one consolidated tool.
type PipelineHandler struct {
	client *bitbucket.Client
}

func NewPipelineHandler(client *bitbucket.Client) *PipelineHandler {
	return &PipelineHandler{client: client}
}

func (ph *PipelineHandler) RegisterTools(s *server.MCPServer) error {
	tool := mcp.NewTool("bitbucket_pipeline",
		mcp.WithDescription("Work with Bitbucket Pipelines. Read actions: list, get. Write actions (use ONLY after the human has explicitly confirmed): trigger, stop."),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("list", "get", "trigger", "stop"),
			mcp.Description("Operation to perform")),
		mcp.WithString("workspace", mcp.Required(), mcp.Description("Workspace slug")),
		mcp.WithString("repo_slug", mcp.Required(), mcp.Description("Repository slug")),
		mcp.WithString("uuid", mcp.Description("Pipeline UUID (required for get and stop)")),
		mcp.WithString("ref", mcp.Description("Branch to run against (trigger)")),
		mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
		mcp.WithNumber("pagelen", mcp.Description("Page size, max 100")),
	)

	s.AddTool(tool, ph.handle)
	return nil
}

func (ph *PipelineHandler) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, _ := req.RequireString("action")
	workspace, _ := req.RequireString("workspace")
	repoSlug, _ := req.RequireString("repo_slug")
	pipelineUUID := optString(req, "uuid")

	log.Debug().
		Str("action", action).
		Str("workspace", workspace).
		Str("repo_slug", repoSlug).
		Str("uuid", pipelineUUID).
		Msg("handling bitbucket_pipeline request")

	switch action {
	case "list":
		resp, err := ph.client.ListPipelines(ctx, workspace, repoSlug, pageOptions(req))
		if err != nil {
			log.Error().Err(err).Str("workspace", workspace).Str("repo_slug", repoSlug).Msg("list pipelines failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to list pipelines: %v", err)), nil
		}
		return resultJSON(listEnvelope(resp, compactPipeline)), nil

	case "get":
		if pipelineUUID == "" {
			return mcp.NewToolResultError("uuid is required for action=get"), nil
		}
		pipeline, err := ph.client.GetPipeline(ctx, workspace, repoSlug, pipelineUUID)
		if err != nil {
			log.Error().Err(err).Str("uuid", pipelineUUID).Msg("get pipeline failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to get pipeline: %v", err)), nil
		}
		return resultJSON(pipeline), nil

	case "trigger":
		ref := optString(req, "ref")
		if ref == "" {
			return mcp.NewToolResultError("ref is required for action=trigger"), nil
		}
		pipeline, err := ph.client.TriggerPipeline(ctx, workspace, repoSlug, bitbucket.TriggerPipelineRequest{
			Target: bitbucket.PipelineTarget{RefName: ref},
		})
		if err != nil {
			log.Error().Err(err).Str("ref", ref).Msg("trigger pipeline failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to trigger pipeline: %v", err)), nil
		}
		return resultJSON(pipeline), nil

	case "stop":
		if pipelineUUID == "" {
			return mcp.NewToolResultError("uuid is required for action=stop"), nil
		}
		if err := ph.client.StopPipeline(ctx, workspace, repoSlug, pipelineUUID); err != nil {
			log.Error().Err(err).Str("uuid", pipelineUUID).Msg("stop pipeline failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to stop pipeline: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Pipeline %s stop requested", pipelineUUID)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}
