package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matterhub/redline/internal/api"
	"github.com/matterhub/redline/internal/assist"
	"github.com/matterhub/redline/internal/audit"
	"github.com/matterhub/redline/internal/config"
	"github.com/matterhub/redline/internal/graph"
	"github.com/matterhub/redline/internal/revision"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	store := graph.NewClient(cfg.GraphBaseURL, cfg.MaxFetchBytes, graph.RateLimit{
		RequestsPerSecond: float64(cfg.GraphRequestsPerSecond),
		Burst:             cfg.GraphBurst,
	})

	var narrator *assist.NarrativeClient
	if cfg.AnthropicAPIKey != "" {
		narrator = assist.NewNarrativeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	} else {
		log.Warn("ANTHROPIC_API_KEY not set; narrative endpoints disabled")
	}

	trail, err := audit.Open(cfg.AuditDBPath, log)
	if err != nil {
		log.Error("failed to open audit store", "error", err, "path", cfg.AuditDBPath)
		os.Exit(1)
	}
	go trail.PruneLoop(ctx, time.Hour, cfg.AuditRetention)

	extractor := revision.NewExtractor(store, log)

	// Initialize HTTP server.
	srv := api.NewServer(extractor, store, narrator, trail, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if narrator != nil {
			narrator.Close()
		}
		store.Close()
		trail.Close()
	}()

	log.Info("starting redline", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
