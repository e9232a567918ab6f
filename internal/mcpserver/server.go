package mcpserver

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/cascade/bitbucket-mcp-server/internal/config"
	"github.com/cascade/bitbucket-mcp-server/internal/handlers"
)

type toolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

func registerHandler(s *server.MCPServer, handler toolRegisterer, name string) error {
	if err := handler.RegisterTools(s); err != nil {
		log.Error().Err(err).Msgf("Failed to register %s tools", name)
		return err
	}
	return nil
}

// Run starts the MCP server with configuration from the environment.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Init()

	client, err := cfg.NewClient()
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Bitbucket client")
		return err
	}
	log.Info().Str("base_url", client.BaseURL()).Str("auth_method", client.Auth().Method()).Msg("Bitbucket client created")

	s := server.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		server.WithToolCapabilities(true),
	)

	for _, h := range []struct {
		name    string
		handler toolRegisterer
	}{
		{"workspace", handlers.NewWorkspaceHandler(client)},
		{"repository", handlers.NewRepositoryHandler(client)},
		{"pull_request", handlers.NewPullRequestHandler(client)},
		{"branch", handlers.NewBranchHandler(client)},
		{"commit", handlers.NewCommitHandler(client)},
		{"pipeline", handlers.NewPipelineHandler(client)},
		{"issue", handlers.NewIssueHandler(client)},
		{"webhook", handlers.NewWebhookHandler(client)},
	} {
		if err := registerHandler(s, h.handler, h.name); err != nil {
			return err
		}
	}

	if shouldUseStdio() {
		// Stdio transport (for Claude Desktop, launched processes)
		log.Info().Msg("Starting Bitbucket MCP server (stdio transport)")
		return server.ServeStdio(s)
	}

	// HTTP transport (for manual/Docker startup)
	log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting Bitbucket MCP server (Streamable HTTP)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	shutdownComplete := make(chan struct{})

	streamSrv := server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamSrv)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: 0, // no deadline, required for SSE streaming
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		defer close(shutdownComplete)

		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during HTTP server shutdown")
		}
		if err := streamSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during MCP server shutdown")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("HTTP server error")
		return err
	}

	<-shutdownComplete
	log.Info().Msg("MCP server shutdown complete")
	return nil
}

// shouldUseStdio determines whether to use stdio transport based on environment.
func shouldUseStdio() bool {
	if os.Getenv("MCP_STDIO") == "true" {
		return true
	}
	if os.Getenv("MCP_HTTP") == "true" {
		return false
	}
	// Auto-detect: use stdio if stdin is not a terminal (launched by
	// another process).
	if fileInfo, err := os.Stdin.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) == 0
	}
	return false
}
