package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Workspace operations - all methods operate directly on Client

// ListWorkspaces retrieves the workspaces visible to the authenticated user.
func (c *Client) ListWorkspaces(ctx context.Context, page PageOptions) (*Paginated[Workspace], error) {
	var out Paginated[Workspace]
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/workspaces",
		Query:  page.Query(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWorkspace retrieves a single workspace by slug.
func (c *Client) GetWorkspace(ctx context.Context, workspace string) (*Workspace, error) {
	if err := ValidateSlug(workspace, "workspace"); err != nil {
		return nil, err
	}
	var out Workspace
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/workspaces/%s", workspace),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListWorkspaceMembers retrieves the members of a workspace.
func (c *Client) ListWorkspaceMembers(ctx context.Context, workspace string, page PageOptions) (*Paginated[WorkspaceMember], error) {
	if err := ValidateSlug(workspace, "workspace"); err != nil {
		return nil, err
	}
	var out Paginated[WorkspaceMember]
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/workspaces/%s/members", workspace),
		Query:  page.Query(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ForEachWorkspace walks all visible workspaces page by page.
func (c *Client) ForEachWorkspace(ctx context.Context, page PageOptions, fn func([]Workspace) error) error {
	return ForEachPage(ctx, page, func(ctx context.Context, q url.Values) (*Paginated[Workspace], error) {
		var out Paginated[Workspace]
		if err := c.doJSON(ctx, RequestOptions{Method: http.MethodGet, Path: "/workspaces", Query: q}, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}, fn)
}
