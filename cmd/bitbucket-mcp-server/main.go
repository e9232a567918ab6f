package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cascade/bitbucket-mcp-server/bitbucket"
	"github.com/cascade/bitbucket-mcp-server/internal/config"
	"github.com/cascade/bitbucket-mcp-server/internal/mcpserver"
)

var debug bool

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bitbucket-mcp-server",
		Short: "MCP server and CLI for the Bitbucket REST API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.InitLogger()
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				os.Setenv("BITBUCKET_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newListWorkspacesCmd())
	rootCmd.AddCommand(newListRepositoriesCmd())
	rootCmd.AddCommand(newGetRepositoryCmd())
	rootCmd.AddCommand(newListPullRequestsCmd())
	rootCmd.AddCommand(newGetPullRequestCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio or streamable HTTP, auto-detected)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcpserver.Run()
		},
	}
}

// newCLIClient builds a client from the environment for one-shot commands.
func newCLIClient() (*bitbucket.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg.NewClient()
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func newListWorkspacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-workspaces",
		Short: "List workspaces visible to the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newCLIClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			resp, err := c.ListWorkspaces(ctx, bitbucket.PageOptions{})
			if err != nil {
				return err
			}
			for _, ws := range resp.Values {
				fmt.Printf("%s\t%s\n", ws.Slug, ws.Name)
			}
			fmt.Printf("Total: %d\n", len(resp.Values))
			return nil
		},
	}
	return cmd
}

func newListRepositoriesCmd() *cobra.Command {
	var workspace, role, sort string
	var pagelen int

	cmd := &cobra.Command{
		Use:   "list-repositories",
		Short: "List repositories in a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" {
				return fmt.Errorf("--workspace is required")
			}

			log.Debug().
				Str("workspace", workspace).
				Str("role", role).
				Msg("listing repositories")

			c, err := newCLIClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			start := time.Now()
			resp, err := c.ListRepositories(ctx, workspace,
				bitbucket.RepositoryFilter{Role: role, Sort: sort},
				bitbucket.PageOptions{Pagelen: pagelen})
			if err != nil {
				log.Error().Err(err).Str("workspace", workspace).Dur("elapsed", time.Since(start)).Msg("list repositories failed")
				return err
			}

			for _, r := range resp.Values {
				fmt.Printf("%s\t%s\n", r.Slug, r.Description)
			}
			fmt.Printf("Total: %d\n", len(resp.Values))
			return nil
		},
	}

	cmd.Flags().StringVar(&workspace, "workspace", "", "Workspace slug (required)")
	cmd.Flags().StringVar(&role, "role", "", "Filter by role: owner, admin, contributor, member")
	cmd.Flags().StringVar(&sort, "sort", "", "Sort field, e.g. -updated_on")
	cmd.Flags().IntVar(&pagelen, "pagelen", 25, "Page size (max 100)")
	_ = cmd.MarkFlagRequired("workspace")

	return cmd
}

func newGetRepositoryCmd() *cobra.Command {
	var workspace, repoSlug string

	cmd := &cobra.Command{
		Use:   "get-repository",
		Short: "Get detailed information about a repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" || repoSlug == "" {
				return fmt.Errorf("--workspace and --repo-slug are required")
			}

			c, err := newCLIClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			repo, err := c.GetRepository(ctx, workspace, repoSlug)
			if err != nil {
				return err
			}
			printJSON(repo)
			return nil
		},
	}

	cmd.Flags().StringVar(&workspace, "workspace", "", "Workspace slug (required)")
	cmd.Flags().StringVar(&repoSlug, "repo-slug", "", "Repository slug (required)")
	_ = cmd.MarkFlagRequired("workspace")
	_ = cmd.MarkFlagRequired("repo-slug")

	return cmd
}

func newListPullRequestsCmd() *cobra.Command {
	var workspace, repoSlug, state string

	cmd := &cobra.Command{
		Use:   "list-pull-requests",
		Short: "List pull requests for a repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" || repoSlug == "" {
				return fmt.Errorf("--workspace and --repo-slug are required")
			}

			c, err := newCLIClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			resp, err := c.ListPullRequests(ctx, workspace, repoSlug, state, bitbucket.PageOptions{})
			if err != nil {
				return err
			}
			for _, pr := range resp.Values {
				fmt.Printf("#%d\t%s\t%s\n", pr.ID, pr.State, pr.Title)
			}
			fmt.Printf("Total: %d\n", len(resp.Values))
			return nil
		},
	}

	cmd.Flags().StringVar(&workspace, "workspace", "", "Workspace slug (required)")
	cmd.Flags().StringVar(&repoSlug, "repo-slug", "", "Repository slug (required)")
	cmd.Flags().StringVar(&state, "state", "", "Filter: OPEN, MERGED, DECLINED, SUPERSEDED")
	_ = cmd.MarkFlagRequired("workspace")
	_ = cmd.MarkFlagRequired("repo-slug")

	return cmd
}

func newGetPullRequestCmd() *cobra.Command {
	var workspace, repoSlug string
	var id int

	cmd := &cobra.Command{
		Use:   "get-pull-request",
		Short: "Get detailed information about a pull request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" || repoSlug == "" || id <= 0 {
				return fmt.Errorf("--workspace, --repo-slug, and --id are required")
			}

			c, err := newCLIClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			pr, err := c.GetPullRequest(ctx, workspace, repoSlug, id)
			if err != nil {
				return err
			}
			printJSON(pr)
			return nil
		},
	}

	cmd.Flags().StringVar(&workspace, "workspace", "", "Workspace slug (required)")
	cmd.Flags().StringVar(&repoSlug, "repo-slug", "", "Repository slug (required)")
	cmd.Flags().IntVar(&id, "id", 0, "Pull request ID (required)")
	_ = cmd.MarkFlagRequired("workspace")
	_ = cmd.MarkFlagRequired("repo-slug")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
