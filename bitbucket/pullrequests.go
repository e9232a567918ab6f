package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Pull request operations.

// ListPullRequests retrieves pull requests for a repository. state may be
// empty (server defaults to OPEN) or one of OPEN, MERGED, DECLINED,
// SUPERSEDED.
func (c *Client) ListPullRequests(ctx context.Context, workspace, repoSlug, state string, page PageOptions) (*Paginated[PullRequest], error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	q := page.Query()
	if state != "" {
		q.Set("state", state)
	}
	var out Paginated[PullRequest]
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/pullrequests", workspace, repoSlug),
		Query:  q,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPullRequest retrieves a single pull request by ID.
func (c *Client) GetPullRequest(ctx context.Context, workspace, repoSlug string, id int) (*PullRequest, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	var out PullRequest
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/pullrequests/%d", workspace, repoSlug, id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePullRequest opens a new pull request.
func (c *Client) CreatePullRequest(ctx context.Context, workspace, repoSlug string, req CreatePullRequestRequest) (*PullRequest, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, configError("pull request title is required")
	}
	if req.Source.Branch.Name == "" {
		return nil, configError("pull request source branch is required")
	}
	var out PullRequest
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/repositories/%s/%s/pullrequests", workspace, repoSlug),
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePullRequest changes the title and/or description of a pull request.
func (c *Client) UpdatePullRequest(ctx context.Context, workspace, repoSlug string, id int, req UpdatePullRequestRequest) (*PullRequest, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	var out PullRequest
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/repositories/%s/%s/pullrequests/%d", workspace, repoSlug, id),
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ApprovePullRequest records the caller's approval.
func (c *Client) ApprovePullRequest(ctx context.Context, workspace, repoSlug string, id int) error {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return err
	}
	return c.doJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/repositories/%s/%s/pullrequests/%d/approve", workspace, repoSlug, id),
	}, nil)
}

// UnapprovePullRequest withdraws the caller's approval.
func (c *Client) UnapprovePullRequest(ctx context.Context, workspace, repoSlug string, id int) error {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return err
	}
	return c.doJSON(ctx, RequestOptions{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/repositories/%s/%s/pullrequests/%d/approve", workspace, repoSlug, id),
	}, nil)
}

// DeclinePullRequest declines an open pull request.
func (c *Client) DeclinePullRequest(ctx context.Context, workspace, repoSlug string, id int) (*PullRequest, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	var out PullRequest
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/repositories/%s/%s/pullrequests/%d/decline", workspace, repoSlug, id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MergePullRequest merges an open pull request.
func (c *Client) MergePullRequest(ctx context.Context, workspace, repoSlug string, id int, req MergePullRequestRequest) (*PullRequest, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	var out PullRequest
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/repositories/%s/%s/pullrequests/%d/merge", workspace, repoSlug, id),
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPullRequestComments retrieves comments on a pull request.
func (c *Client) ListPullRequestComments(ctx context.Context, workspace, repoSlug string, id int, page PageOptions) (*Paginated[PullRequestComment], error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	var out Paginated[PullRequestComment]
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/pullrequests/%d/comments", workspace, repoSlug, id),
		Query:  page.Query(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AddPullRequestComment adds a comment, optionally anchored inline.
func (c *Client) AddPullRequestComment(ctx context.Context, workspace, repoSlug string, id int, req AddCommentRequest) (*PullRequestComment, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	if req.Content.Raw == "" {
		return nil, configError("comment content is required")
	}
	var out PullRequestComment
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/repositories/%s/%s/pullrequests/%d/comments", workspace, repoSlug, id),
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPullRequestCommits retrieves the commits that make up a pull request.
func (c *Client) ListPullRequestCommits(ctx context.Context, workspace, repoSlug string, id int, page PageOptions) (*Paginated[Commit], error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	var out Paginated[Commit]
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/pullrequests/%d/commits", workspace, repoSlug, id),
		Query:  page.Query(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ForEachPullRequest walks pull requests page by page.
func (c *Client) ForEachPullRequest(ctx context.Context, workspace, repoSlug, state string, page PageOptions, fn func([]PullRequest) error) error {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return err
	}
	path := fmt.Sprintf("/repositories/%s/%s/pullrequests", workspace, repoSlug)
	return ForEachPage(ctx, page, func(ctx context.Context, q url.Values) (*Paginated[PullRequest], error) {
		if state != "" {
			q.Set("state", state)
		}
		var out Paginated[PullRequest]
		if err := c.doJSON(ctx, RequestOptions{Method: http.MethodGet, Path: path, Query: q}, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}, fn)
}

func validateRepoPath(workspace, repoSlug string) error {
	if err := ValidateSlug(workspace, "workspace"); err != nil {
		return err
	}
	return ValidateSlug(repoSlug, "repo_slug")
}
