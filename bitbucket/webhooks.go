package bitbucket

import (
	"context"
	"fmt"
	"net/http"
)

// Webhook operations.

// ListWebhooks retrieves webhook subscriptions on a repository.
func (c *Client) ListWebhooks(ctx context.Context, workspace, repoSlug string, page PageOptions) (*Paginated[Webhook], error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	var out Paginated[Webhook]
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/hooks", workspace, repoSlug),
		Query:  page.Query(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWebhook retrieves a single webhook by UUID.
func (c *Client) GetWebhook(ctx context.Context, workspace, repoSlug, hookUUID string) (*Webhook, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	if err := ValidateUUID(hookUUID, "webhook uuid"); err != nil {
		return nil, err
	}
	var out Webhook
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/hooks/%s", workspace, repoSlug, BraceUUID(hookUUID)),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWebhook registers a new webhook subscription.
func (c *Client) CreateWebhook(ctx context.Context, workspace, repoSlug string, req CreateWebhookRequest) (*Webhook, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	if req.URL == "" {
		return nil, configError("webhook url is required")
	}
	if len(req.Events) == 0 {
		return nil, configError("webhook events are required")
	}
	var out Webhook
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/repositories/%s/%s/hooks", workspace, repoSlug),
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteWebhook removes a webhook subscription.
func (c *Client) DeleteWebhook(ctx context.Context, workspace, repoSlug, hookUUID string) error {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return err
	}
	if err := ValidateUUID(hookUUID, "webhook uuid"); err != nil {
		return err
	}
	return c.doJSON(ctx, RequestOptions{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/repositories/%s/%s/hooks/%s", workspace, repoSlug, BraceUUID(hookUUID)),
	}, nil)
}
