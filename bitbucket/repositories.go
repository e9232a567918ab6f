package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// RepositoryFilter narrows repository list calls. All fields optional.
type RepositoryFilter struct {
	// Role filters by the caller's role: owner, admin, contributor, member.
	Role string
	// Query is a Bitbucket filter expression, e.g. `name ~ "api"`.
	Query string
	// Sort orders results, e.g. "-updated_on".
	Sort string
}

func (f RepositoryFilter) apply(q url.Values) url.Values {
	if f.Role != "" {
		q.Set("role", f.Role)
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.Sort != "" {
		q.Set("sort", f.Sort)
	}
	return q
}

// ListRepositories retrieves repositories in a workspace.
func (c *Client) ListRepositories(ctx context.Context, workspace string, filter RepositoryFilter, page PageOptions) (*Paginated[Repository], error) {
	if err := ValidateSlug(workspace, "workspace"); err != nil {
		return nil, err
	}
	var out Paginated[Repository]
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s", workspace),
		Query:  filter.apply(page.Query()),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRepository retrieves a single repository.
func (c *Client) GetRepository(ctx context.Context, workspace, repoSlug string) (*Repository, error) {
	if err := ValidateSlug(workspace, "workspace"); err != nil {
		return nil, err
	}
	if err := ValidateSlug(repoSlug, "repo_slug"); err != nil {
		return nil, err
	}
	var out Repository
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s", workspace, repoSlug),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ForEachRepository walks all repositories in a workspace page by page,
// following the server's next cursor.
func (c *Client) ForEachRepository(ctx context.Context, workspace string, filter RepositoryFilter, page PageOptions, fn func([]Repository) error) error {
	if err := ValidateSlug(workspace, "workspace"); err != nil {
		return err
	}
	path := fmt.Sprintf("/repositories/%s", workspace)
	return ForEachPage(ctx, page, func(ctx context.Context, q url.Values) (*Paginated[Repository], error) {
		var out Paginated[Repository]
		if err := c.doJSON(ctx, RequestOptions{Method: http.MethodGet, Path: path, Query: filter.apply(q)}, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}, fn)
}
