package bitbucket

import (
	"context"
	"fmt"
	"net/http"
)

// Issue operations. The issue tracker must be enabled on the repository;
// Bitbucket answers 404 otherwise and that surfaces unchanged.

// IssueFilter narrows issue list calls.
type IssueFilter struct {
	// Query is a Bitbucket filter expression, e.g. `state = "open"`.
	Query string
	// Sort orders results, e.g. "-created_on".
	Sort string
}

// ListIssues retrieves issues for a repository.
func (c *Client) ListIssues(ctx context.Context, workspace, repoSlug string, filter IssueFilter, page PageOptions) (*Paginated[Issue], error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	q := page.Query()
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	if filter.Sort != "" {
		q.Set("sort", filter.Sort)
	}
	var out Paginated[Issue]
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/issues", workspace, repoSlug),
		Query:  q,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetIssue retrieves a single issue by ID.
func (c *Client) GetIssue(ctx context.Context, workspace, repoSlug string, id int) (*Issue, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	var out Issue
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/issues/%d", workspace, repoSlug, id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateIssue creates a new issue.
func (c *Client) CreateIssue(ctx context.Context, workspace, repoSlug string, req CreateIssueRequest) (*Issue, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, configError("issue title is required")
	}
	var out Issue
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/repositories/%s/%s/issues", workspace, repoSlug),
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateIssue changes fields of an existing issue.
func (c *Client) UpdateIssue(ctx context.Context, workspace, repoSlug string, id int, req UpdateIssueRequest) (*Issue, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	var out Issue
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/repositories/%s/%s/issues/%d", workspace, repoSlug, id),
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
