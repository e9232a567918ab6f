package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
)

// PullRequestHandler exposes pull request operations as one consolidated
// tool. Write actions (create, update, merge, decline) are described so the
// host agent asks for confirmation before mutating state.
type PullRequestHandler struct {
	client *bitbucket.Client
}

func NewPullRequestHandler(client *bitbucket.Client) *PullRequestHandler {
	return &PullRequestHandler{client: client}
}

func (ph *PullRequestHandler) RegisterTools(s *server.MCPServer) error {
	tool := mcp.NewTool("bitbucket_pull_request",
		mcp.WithDescription("Work with pull requests. Read actions: list, get, list_comments, list_commits. Write actions (use ONLY after the human has explicitly confirmed): create, update, approve, unapprove, decline, merge, add_comment."),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("list", "get", "create", "update", "approve", "unapprove", "decline", "merge", "list_comments", "add_comment", "list_commits"),
			mcp.Description("Operation to perform")),
		mcp.WithString("workspace", mcp.Required(), mcp.Description("Workspace slug")),
		mcp.WithString("repo_slug", mcp.Required(), mcp.Description("Repository slug")),
		mcp.WithNumber("id", mcp.Description("Pull request ID (required for everything except list and create)")),
		mcp.WithString("state", mcp.Description("Filter for list: OPEN, MERGED, DECLINED, SUPERSEDED")),
		mcp.WithString("title", mcp.Description("Title (create/update)")),
		mcp.WithString("description", mcp.Description("Description (create/update)")),
		mcp.WithString("source_branch", mcp.Description("Source branch name (create)")),
		mcp.WithString("destination_branch", mcp.Description("Destination branch name (create, defaults to the main branch)")),
		mcp.WithBoolean("close_source_branch", mcp.Description("Delete the source branch after merge (create/merge)")),
		mcp.WithString("merge_strategy", mcp.Description("merge_commit, squash, or fast_forward (merge)")),
		mcp.WithString("message", mcp.Description("Merge commit message (merge)")),
		mcp.WithString("content", mcp.Description("Comment text (add_comment)")),
		mcp.WithString("file_path", mcp.Description("File to anchor an inline comment to (add_comment)")),
		mcp.WithNumber("line", mcp.Description("Line in the new file version for an inline comment (add_comment)")),
		mcp.WithNumber("page", mcp.Description("Page number (1-based)")),
		mcp.WithNumber("pagelen", mcp.Description("Page size, max 100")),
	)

	s.AddTool(tool, ph.handle)
	return nil
}

func (ph *PullRequestHandler) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, _ := req.RequireString("action")
	workspace, _ := req.RequireString("workspace")
	repoSlug, _ := req.RequireString("repo_slug")
	id := optInt(req, "id")

	log.Debug().
		Str("action", action).
		Str("workspace", workspace).
		Str("repo_slug", repoSlug).
		Int("id", id).
		Msg("handling bitbucket_pull_request request")

	start := time.Now()
	fail := func(what string, err error) (*mcp.CallToolResult, error) {
		log.Error().Err(err).
			Str("workspace", workspace).
			Str("repo_slug", repoSlug).
			Int("id", id).
			Dur("elapsed", time.Since(start)).
			Msgf("%s failed", what)
		return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", what, err)), nil
	}

	switch action {
	case "list":
		resp, err := ph.client.ListPullRequests(ctx, workspace, repoSlug, optString(req, "state"), pageOptions(req))
		if err != nil {
			return fail("list pull requests", err)
		}
		return resultJSON(listEnvelope(resp, compactPullRequest)), nil

	case "get":
		if id <= 0 {
			return mcp.NewToolResultError("id is required for action=get"), nil
		}
		pr, err := ph.client.GetPullRequest(ctx, workspace, repoSlug, id)
		if err != nil {
			return fail("get pull request", err)
		}
		return resultJSON(pr), nil

	case "create":
		createReq := bitbucket.CreatePullRequestRequest{
			Title:             optString(req, "title"),
			Description:       optString(req, "description"),
			CloseSourceBranch: optBool(req, "close_source_branch"),
			Source: bitbucket.PullRequestEndpoint{
				Branch: bitbucket.BranchRef{Name: optString(req, "source_branch")},
			},
		}
		if dst := optString(req, "destination_branch"); dst != "" {
			createReq.Destination = &bitbucket.PullRequestEndpoint{
				Branch: bitbucket.BranchRef{Name: dst},
			}
		}
		pr, err := ph.client.CreatePullRequest(ctx, workspace, repoSlug, createReq)
		if err != nil {
			return fail("create pull request", err)
		}
		return resultJSON(pr), nil

	case "update":
		if id <= 0 {
			return mcp.NewToolResultError("id is required for action=update"), nil
		}
		pr, err := ph.client.UpdatePullRequest(ctx, workspace, repoSlug, id, bitbucket.UpdatePullRequestRequest{
			Title:       optString(req, "title"),
			Description: optString(req, "description"),
		})
		if err != nil {
			return fail("update pull request", err)
		}
		return resultJSON(pr), nil

	case "approve":
		if id <= 0 {
			return mcp.NewToolResultError("id is required for action=approve"), nil
		}
		if err := ph.client.ApprovePullRequest(ctx, workspace, repoSlug, id); err != nil {
			return fail("approve pull request", err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Pull request #%d approved", id)), nil

	case "unapprove":
		if id <= 0 {
			return mcp.NewToolResultError("id is required for action=unapprove"), nil
		}
		if err := ph.client.UnapprovePullRequest(ctx, workspace, repoSlug, id); err != nil {
			return fail("unapprove pull request", err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Approval removed from pull request #%d", id)), nil

	case "decline":
		if id <= 0 {
			return mcp.NewToolResultError("id is required for action=decline"), nil
		}
		pr, err := ph.client.DeclinePullRequest(ctx, workspace, repoSlug, id)
		if err != nil {
			return fail("decline pull request", err)
		}
		return resultJSON(pr), nil

	case "merge":
		if id <= 0 {
			return mcp.NewToolResultError("id is required for action=merge"), nil
		}
		pr, err := ph.client.MergePullRequest(ctx, workspace, repoSlug, id, bitbucket.MergePullRequestRequest{
			Message:           optString(req, "message"),
			MergeStrategy:     optString(req, "merge_strategy"),
			CloseSourceBranch: optBool(req, "close_source_branch"),
		})
		if err != nil {
			return fail("merge pull request", err)
		}
		return resultJSON(pr), nil

	case "list_comments":
		if id <= 0 {
			return mcp.NewToolResultError("id is required for action=list_comments"), nil
		}
		resp, err := ph.client.ListPullRequestComments(ctx, workspace, repoSlug, id, pageOptions(req))
		if err != nil {
			return fail("list pull request comments", err)
		}
		return resultJSON(resp), nil

	case "add_comment":
		if id <= 0 {
			return mcp.NewToolResultError("id is required for action=add_comment"), nil
		}
		commentReq := bitbucket.AddCommentRequest{
			Content: bitbucket.Content{Raw: optString(req, "content")},
		}
		if path := optString(req, "file_path"); path != "" {
			commentReq.Inline = &bitbucket.InlineLocation{Path: path, To: optInt(req, "line")}
		}
		comment, err := ph.client.AddPullRequestComment(ctx, workspace, repoSlug, id, commentReq)
		if err != nil {
			return fail("add pull request comment", err)
		}
		return resultJSON(comment), nil

	case "list_commits":
		if id <= 0 {
			return mcp.NewToolResultError("id is required for action=list_commits"), nil
		}
		resp, err := ph.client.ListPullRequestCommits(ctx, workspace, repoSlug, id, pageOptions(req))
		if err != nil {
			return fail("list pull request commits", err)
		}
		return resultJSON(listEnvelope(resp, compactCommit)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}
