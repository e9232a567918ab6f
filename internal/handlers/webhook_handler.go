package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

// WebhookHandler exposes webhook subscriptions as one consolidated tool.
type WebhookHandler struct {
	client *bitbucket.Client
}

func NewWebhookHandler(client *bitbucket.Client) *WebhookHandler {
	return &WebhookHandler{client: client}
}

func (wh *WebhookHandler) RegisterTools(s *server.MCPServer) error {
	tool := mcp.NewTool("bitbucket_webhook",
		mcp.WithDescription("Manage repository webhooks. Read actions: list, get. Write actions (use ONLY after the human has explicitly confirmed): create, delete."),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("list", "get", "create", "delete"),
			mcp.Description("Operation to perform")),
		mcp.WithString("workspace", mcp.Required(), mcp.Description("Workspace slug")),
		mcp.WithString("repo_slug", mcp.Required(), mcp.Description("Repository slug")),
		mcp.WithString("uuid", mcp.Description("Webhook UUID (required for get and delete)")),
		mcp.WithString("url", mcp.Description("Delivery URL (create)")),
		mcp.WithString("description", mcp.Description("Webhook description (create)")),
		mcp.WithString("events", mcp.Description("Comma-separated event keys, e.g. repo:push,pullrequest:created (create)")),
		mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
		mcp.WithNumber("pagelen", mcp.Description("Page size, max 100")),
	)

	s.AddTool(tool, wh.handle)
	return nil
}

func (wh *WebhookHandler) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, _ := req.RequireString("action")
	workspace, _ := req.RequireString("workspace")
	repoSlug, _ := req.RequireString("repo_slug")
	hookUUID := optString(req, "uuid")

	log.Debug().
		Str("action", action).
		Str("workspace", workspace).
		Str("repo_slug", repoSlug).
		Str("uuid", hookUUID).
		Msg("handling bitbucket_webhook request")

	switch action {
	case "list":
		resp, err := wh.client.ListWebhooks(ctx, workspace, repoSlug, pageOptions(req))
		if err != nil {
			log.Error().Err(err).Str("workspace", workspace).Str("repo_slug", repoSlug).Msg("list webhooks failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to list webhooks: %v", err)), nil
		}
		return resultJSON(listEnvelope(resp, compactWebhook)), nil

	case "get":
		if hookUUID == "" {
			return mcp.NewToolResultError("uuid is required for action=get"), nil
		}
		hook, err := wh.client.GetWebhook(ctx, workspace, repoSlug, hookUUID)
		if err != nil {
			log.Error().Err(err).Str("uuid", hookUUID).Msg("get webhook failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to get webhook: %v", err)), nil
		}
		return resultJSON(hook), nil

	case "create":
		deliveryURL := optString(req, "url")
		if deliveryURL == "" {
			return mcp.NewToolResultError("url is required for action=create"), nil
		}
		rawEvents := optString(req, "events")
		if rawEvents == "" {
			return mcp.NewToolResultError("events is required for action=create"), nil
		}
		var events []string
		for _, e := range strings.Split(rawEvents, ",") {
			if e = strings.TrimSpace(e); e != "" {
				events = append(events, e)
			}
		}
		hook, err := wh.client.CreateWebhook(ctx, workspace, repoSlug, bitbucket.CreateWebhookRequest{
			URL:         deliveryURL,
			Description: optString(req, "description"),
			Active:      true,
			Events:      events,
		})
		if err != nil {
			log.Error().Err(err).Str("url", deliveryURL).Msg("create webhook failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to create webhook: %v", err)), nil
		}
		return resultJSON(hook), nil

	case "delete":
		if hookUUID == "" {
			return mcp.NewToolResultError("uuid is required for action=delete"), nil
		}
		if err := wh.client.DeleteWebhook(ctx, workspace, repoSlug, hookUUID); err != nil {
			log.Error().Err(err).Str("uuid", hookUUID).Msg("delete webhook failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete webhook: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Webhook %s deleted", hookUUID)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}
