package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/deusflow/newsrelay/internal/app"
	"github.com/deusflow/newsrelay/internal/config"
	"github.com/deusflow/newsrelay/internal/dedup"
	"github.com/deusflow/newsrelay/internal/embed"
	"github.com/deusflow/newsrelay/internal/history"
	"github.com/deusflow/newsrelay/internal/logger"
	"github.com/deusflow/newsrelay/internal/metrics"
	"github.com/deusflow/newsrelay/internal/rewrite"
	"github.com/deusflow/newsrelay/internal/rss"
	"github.com/deusflow/newsrelay/internal/telegram"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rewriter, err := rewrite.NewRewriter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.OpenAIAPIKey)
	if err != nil {
		log.Fatalf("rewrite client error: %v", err)
	}
	defer rewriter.Close()

	store, err := newHistoryStore(cfg)
	if err != nil {
		log.Fatalf("history store error: %v", err)
	}

	embedder := embed.NewClient(cfg.EmbedEndpoint, cfg.EmbedModel, cfg.RequestTimeout)
	detector := dedup.NewDetector(embedder, cfg.DuplicateThreshold, cfg.HistoryWindow)
	publisher := telegram.NewPublisher(cfg.BotToken, cfg.ChannelID, cfg.RequestTimeout)

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	a := app.New(cfg, rss.NewFetcher(), rewriter, detector, publisher, store)
	a.Run(ctx)
}

func newHistoryStore(cfg *config.Config) (history.Store, error) {
	if cfg.DatabaseURL != "" {
		return history.NewPostgresStore(cfg.DatabaseURL, cfg.HistoryWindow)
	}
	return history.NewFileStore(cfg.HistoryFilePath, cfg.HistoryWindow), nil
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_cycle": stats["last_cycle_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
