package bitbucket

import (
	"context"
	"fmt"
	"net/http"
)

// Pipeline operations.

// ListPipelines retrieves pipeline runs for a repository, newest first.
func (c *Client) ListPipelines(ctx context.Context, workspace, repoSlug string, page PageOptions) (*Paginated[Pipeline], error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	q := page.Query()
	q.Set("sort", "-created_on")
	var out Paginated[Pipeline]
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/pipelines", workspace, repoSlug),
		Query:  q,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPipeline retrieves a single pipeline run by UUID.
func (c *Client) GetPipeline(ctx context.Context, workspace, repoSlug, pipelineUUID string) (*Pipeline, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	if err := ValidateUUID(pipelineUUID, "pipeline uuid"); err != nil {
		return nil, err
	}
	var out Pipeline
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/repositories/%s/%s/pipelines/%s", workspace, repoSlug, BraceUUID(pipelineUUID)),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TriggerPipeline starts a pipeline run for the given target ref.
func (c *Client) TriggerPipeline(ctx context.Context, workspace, repoSlug string, req TriggerPipelineRequest) (*Pipeline, error) {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return nil, err
	}
	if req.Target.RefName == "" && req.Target.Commit == nil {
		return nil, configError("pipeline target ref or commit is required")
	}
	if req.Target.Type == "" {
		req.Target.Type = "pipeline_ref_target"
	}
	if req.Target.RefType == "" && req.Target.RefName != "" {
		req.Target.RefType = "branch"
	}
	var out Pipeline
	err := c.doJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/repositories/%s/%s/pipelines", workspace, repoSlug),
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// StopPipeline requests that a running pipeline halt.
func (c *Client) StopPipeline(ctx context.Context, workspace, repoSlug, pipelineUUID string) error {
	if err := validateRepoPath(workspace, repoSlug); err != nil {
		return err
	}
	if err := ValidateUUID(pipelineUUID, "pipeline uuid"); err != nil {
		return err
	}
	return c.doJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/repositories/%s/%s/pipelines/%s/stopPipeline", workspace, repoSlug, BraceUUID(pipelineUUID)),
	}, nil)
}
