package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oslek-labs/lookout/internal/chat"
	"github.com/oslek-labs/lookout/internal/llm"
	"github.com/oslek-labs/lookout/internal/search"
	"github.com/oslek-labs/lookout/internal/server"
)

// serveCmd starts the HTTP API server
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the Lookout HTTP API server.

The server streams chat completions over NDJSON and grounds answers
with live web search.

Required configuration:
  - LLM API key (LOOKOUT_LLM_API_KEY or GROQ_API_KEY)

Optional:
  - Kagi search (LOOKOUT_KAGI_API_KEY); DuckDuckGo is used otherwise`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// runServer initializes and starts the HTTP API server
func runServer(ctx context.Context) error {
	slog.Info("starting lookout server",
		"addr", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port),
		"llm_url", cfg.LLM.URL,
		"model", cfg.LLM.Model,
		"llm_configured", cfg.IsLLMConfigured(),
	)
	if !cfg.IsLLMConfigured() {
		slog.Warn("LLM API key not set, chat requests will be rejected")
	}

	llmClient := llm.NewClient(cfg.LLM.URL, cfg.LLM.APIKey, cfg.LLM.Model)

	searchClient := search.NewClient(
		search.WithKagiAPIKey(cfg.Search.KagiAPIKey),
		search.WithTimeout(cfg.Search.Timeout),
	)
	if cfg.Search.KagiAPIKey != "" {
		slog.Info("search backend", "backend", "kagi")
	} else {
		slog.Info("search backend", "backend", "duckduckgo")
	}

	orch := chat.NewOrchestrator(llmClient, searchClient, cfg.Chat.MaxTurns)

	srv := server.NewServer(cfg, orch, searchClient)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-sigChan:
		slog.Info("received signal, shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		slog.Info("server stopped")
		return nil
	}
}
