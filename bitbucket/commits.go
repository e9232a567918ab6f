package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Commit operations.

// ListCommits retrieves the commit history of a repository. revision may be
// empty (main branch) or any branch, tag, or hash.
func (c *Client) ListCommits(ctx context.Context, workspace, repoSlug, revision string, page PageOptions) (*Paginated[Commit], error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/repositories/%s/%s/commits", workspace, repoSlug)
	if revision != "" {
		path += "/" + url.PathEscape(revision)
	}
	var out Paginated[Commit]
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   path,
		Query:  page.Query(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCommit retrieves a single commit by hash.
func (c *Client) GetCommit(ctx context.Context, workspace, repoSlug, hash string) (*Commit, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	if hash == "" {
		return nil, configError("commit hash is required")
	}
	var out Commit
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/commit/%s", workspace, repoSlug, url.PathEscape(hash)),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
