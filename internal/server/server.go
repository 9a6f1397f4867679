package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oslek-labs/lookout/internal/chat"
	"github.com/oslek-labs/lookout/internal/config"
	"github.com/oslek-labs/lookout/internal/search"
	"github.com/oslek-labs/lookout/internal/server/handlers"
)

type Server struct {
	cfg    *config.Config
	router chi.Router
	http   *http.Server
}

func NewServer(cfg *config.Config, orch *chat.Orchestrator, searcher *search.Client) *Server {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)
	r.Use(CORS(cfg.Server.AllowedOrigins))
	r.Use(Metrics)

	chatHandler := handlers.NewChatHandler(orch, cfg.IsLLMConfigured())
	healthHandler := handlers.NewHealthHandler(searcher.Ping)

	r.Get("/health", healthHandler.Liveness)
	r.Get("/health/search", healthHandler.SearchReadiness)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/chat", chatHandler.Handle)

	if cfg.Server.StaticDir != "" {
		if info, err := os.Stat(cfg.Server.StaticDir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(cfg.Server.StaticDir)))
		} else {
			slog.Warn("static dir not found, skipping file server", "dir", cfg.Server.StaticDir)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return &Server{
		cfg:    cfg,
		router: r,
		http: &http.Server{
			Addr:        addr,
			Handler:     r,
			ReadTimeout: 30 * time.Second,
			// Streams run for as long as the model keeps producing;
			// no write deadline.
			WriteTimeout: 0,
		},
	}
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	slog.Info("server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	slog.Info("server shutting down")
	return s.http.Shutdown(ctx)
}
