package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Branch operations.

// ListBranches retrieves branches of a repository.
func (c *Client) ListBranches(ctx context.Context, workspace, repoSlug string, page PageOptions) (*Paginated[Branch], error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	var out Paginated[Branch]
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/refs/branches", workspace, repoSlug),
		Query:  page.Query(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBranch retrieves a single branch by name.
func (c *Client) GetBranch(ctx context.Context, workspace, repoSlug, name string) (*Branch, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, configError("branch name is required")
	}
	var out Branch
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/refs/branches/%s", workspace, repoSlug, url.PathEscape(name)),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBranch creates a branch pointing at the given commit hash.
func (c *Client) CreateBranch(ctx context.Context, workspace, repoSlug string, req CreateBranchRequest) (*Branch, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, configError("branch name is required")
	}
	if req.Target.Hash == "" {
		return nil, configError("branch target hash is required")
	}
	var out Branch
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/repositories/%s/%s/refs/branches", workspace, repoSlug),
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBranch deletes a branch.
func (c *Client) DeleteBranch(ctx context.Context, workspace, repoSlug, name string) error {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return err
	}
	if name == "" {
		return configError("branch name is required")
	}
	return c.doJSON(ctx, RequestOptions{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/repositories/%s/%s/refs/branches/%s", workspace, repoSlug, url.PathEscape(name)),
	}, nil)
}
