package bitbucket

import "time"

// ------------------------------
// Core domain types and payloads
// ------------------------------

// Account is the minimal user shape embedded across resources.
type Account struct {
	UUID        string `json:"uuid,omitempty"`
	Username    string `json:"username,omitempty"`
	Nickname    string `json:"nickname,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AccountID   string `json:"account_id,omitempty"`
}

// Workspace represents a Bitbucket workspace.
type Workspace struct {
	UUID      string     `json:"uuid,omitempty"`
	Slug      string     `json:"slug"`
	Name      string     `json:"name,omitempty"`
	IsPrivate bool       `json:"is_private,omitempty"`
	CreatedOn *time.Time `json:"created_on,omitempty"`
}

// WorkspaceMember links an account to a workspace.
type WorkspaceMember struct {
	User      Account   `json:"user"`
	Workspace Workspace `json:"workspace"`
}

// Repository represents a Bitbucket repository.
type Repository struct {
	UUID        string     `json:"uuid,omitempty"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name,omitempty"`
	FullName    string     `json:"full_name,omitempty"`
	Description string     `json:"description,omitempty"`
	IsPrivate   bool       `json:"is_private,omitempty"`
	ForkPolicy  string     `json:"fork_policy,omitempty"`
	Language    string     `json:"language,omitempty"`
	Size        int64      `json:"size,omitempty"`
	MainBranch  *BranchRef `json:"mainbranch,omitempty"`
	Owner       *Account   `json:"owner,omitempty"`
	CreatedOn   *time.Time `json:"created_on,omitempty"`
	UpdatedOn   *time.Time `json:"updated_on,omitempty"`
}

// BranchRef is the lightweight branch pointer embedded in repositories and
// pull request endpoints.
type BranchRef struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// CommitRef is the lightweight commit pointer embedded in refs.
type CommitRef struct {
	Hash string `json:"hash"`
}

// PullRequestEndpoint is one side (source or destination) of a pull request.
type PullRequestEndpoint struct {
	Branch     BranchRef   `json:"branch"`
	Commit     *CommitRef  `json:"commit,omitempty"`
	Repository *Repository `json:"repository,omitempty"`
}

// PullRequest represents a Bitbucket pull request.
type PullRequest struct {
	ID                int                 `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description,omitempty"`
	State             string              `json:"state,omitempty"` // OPEN, MERGED, DECLINED, SUPERSEDED
	Author            *Account            `json:"author,omitempty"`
	Source            PullRequestEndpoint `json:"source"`
	Destination       PullRequestEndpoint `json:"destination"`
	Reviewers         []Account           `json:"reviewers,omitempty"`
	CloseSourceBranch bool                `json:"close_source_branch,omitempty"`
	CommentCount      int                 `json:"comment_count,omitempty"`
	TaskCount         int                 `json:"task_count,omitempty"`
	CreatedOn         *time.Time          `json:"created_on,omitempty"`
	UpdatedOn         *time.Time          `json:"updated_on,omitempty"`
}

// CreatePullRequestRequest is the payload for POST .../pullrequests.
type CreatePullRequestRequest struct {
	Title             string              `json:"title"`
	Description       string              `json:"description,omitempty"`
	Source            PullRequestEndpoint `json:"source"`
	Destination       *PullRequestEndpoint `json:"destination,omitempty"`
	Reviewers         []Account           `json:"reviewers,omitempty"`
	CloseSourceBranch bool                `json:"close_source_branch,omitempty"`
}

// UpdatePullRequestRequest is the payload for PUT .../pullrequests/{id}.
// Empty fields are omitted so the server keeps current values.
type UpdatePullRequestRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// MergePullRequestRequest is the payload for POST .../pullrequests/{id}/merge.
type MergePullRequestRequest struct {
	Message           string `json:"message,omitempty"`
	MergeStrategy     string `json:"merge_strategy,omitempty"` // merge_commit, squash, fast_forward
	CloseSourceBranch bool   `json:"close_source_branch,omitempty"`
}

// Content is rendered text content as returned by the API.
type Content struct {
	Raw  string `json:"raw,omitempty"`
	HTML string `json:"html,omitempty"`
}

// InlineLocation anchors a comment to a file position in the diff.
type InlineLocation struct {
	Path string `json:"path"`
	From int    `json:"from,omitempty"`
	To   int    `json:"to,omitempty"`
}

// PullRequestComment is a comment on a pull request, optionally inline.
type PullRequestComment struct {
	ID        int             `json:"id"`
	Content   Content         `json:"content"`
	User      *Account        `json:"user,omitempty"`
	Inline    *InlineLocation `json:"inline,omitempty"`
	Deleted   bool            `json:"deleted,omitempty"`
	CreatedOn *time.Time      `json:"created_on,omitempty"`
	UpdatedOn *time.Time      `json:"updated_on,omitempty"`
}

// AddCommentRequest is the payload for POST .../comments.
type AddCommentRequest struct {
	Content Content         `json:"content"`
	Inline  *InlineLocation `json:"inline,omitempty"`
}

// Branch is a full branch resource with its target commit.
type Branch struct {
	Name   string  `json:"name"`
	Target *Commit `json:"target,omitempty"`
}

// CreateBranchRequest is the payload for POST .../refs/branches.
type CreateBranchRequest struct {
	Name   string    `json:"name"`
	Target CommitRef `json:"target"`
}

// CommitAuthor carries both the raw signature line and the resolved account.
type CommitAuthor struct {
	Raw  string   `json:"raw,omitempty"`
	User *Account `json:"user,omitempty"`
}

// Commit represents a commit.
type Commit struct {
	Hash    string        `json:"hash"`
	Message string        `json:"message,omitempty"`
	Date    *time.Time    `json:"date,omitempty"`
	Author  *CommitAuthor `json:"author,omitempty"`
	Parents []CommitRef   `json:"parents,omitempty"`
}

// PipelineState describes where a pipeline run is in its lifecycle.
type PipelineState struct {
	Name   string `json:"name,omitempty"` // PENDING, IN_PROGRESS, COMPLETED
	Result *struct {
		Name string `json:"name,omitempty"` // SUCCESSFUL, FAILED, ERROR, STOPPED
	} `json:"result,omitempty"`
}

// PipelineTarget identifies what a pipeline ran against.
type PipelineTarget struct {
	Type     string     `json:"type,omitempty"`
	RefType  string     `json:"ref_type,omitempty"`
	RefName  string     `json:"ref_name,omitempty"`
	Commit   *CommitRef `json:"commit,omitempty"`
	Selector *struct {
		Type    string `json:"type,omitempty"`
		Pattern string `json:"pattern,omitempty"`
	} `json:"selector,omitempty"`
}

// Pipeline represents one pipeline run.
type Pipeline struct {
	UUID        string          `json:"uuid"`
	BuildNumber int             `json:"build_number,omitempty"`
	State       *PipelineState  `json:"state,omitempty"`
	Target      *PipelineTarget `json:"target,omitempty"`
	Creator     *Account        `json:"creator,omitempty"`
	CreatedOn   *time.Time      `json:"created_on,omitempty"`
	CompletedOn *time.Time      `json:"completed_on,omitempty"`
}

// TriggerPipelineRequest is the payload for POST .../pipelines.
type TriggerPipelineRequest struct {
	Target PipelineTarget `json:"target"`
}

// Issue represents a repository issue.
type Issue struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Content   *Content   `json:"content,omitempty"`
	State     string     `json:"state,omitempty"` // new, open, resolved, closed, ...
	Kind      string     `json:"kind,omitempty"`  // bug, enhancement, task, proposal
	Priority  string     `json:"priority,omitempty"`
	Assignee  *Account   `json:"assignee,omitempty"`
	Reporter  *Account   `json:"reporter,omitempty"`
	CreatedOn *time.Time `json:"created_on,omitempty"`
	UpdatedOn *time.Time `json:"updated_on,omitempty"`
}

// CreateIssueRequest is the payload for POST .../issues.
type CreateIssueRequest struct {
	Title    string   `json:"title"`
	Content  *Content `json:"content,omitempty"`
	Kind     string   `json:"kind,omitempty"`
	Priority string   `json:"priority,omitempty"`
	Assignee *Account `json:"assignee,omitempty"`
}

// UpdateIssueRequest is the payload for PUT .../issues/{id}.
type UpdateIssueRequest struct {
	Title    string   `json:"title,omitempty"`
	Content  *Content `json:"content,omitempty"`
	State    string   `json:"state,omitempty"`
	Kind     string   `json:"kind,omitempty"`
	Priority string   `json:"priority,omitempty"`
	Assignee *Account `json:"assignee,omitempty"`
}

// Webhook represents a repository webhook subscription.
type Webhook struct {
	UUID        string     `json:"uuid,omitempty"`
	URL         string     `json:"url"`
	Description string     `json:"description,omitempty"`
	Active      bool       `json:"active"`
	Events      []string   `json:"events"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// CreateWebhookRequest is the payload for POST .../hooks.
type CreateWebhookRequest struct {
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	Active      bool     `json:"active"`
	Events      []string `json:"events"`
}
