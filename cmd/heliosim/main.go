// Command heliosim is the streaming search backend simulator. It serves the
// search stream over a small built-in corpus so the client can be exercised
// end to end without a production backend.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/helio-search/helio/internal/config"
	"github.com/helio-search/helio/internal/db"
	dbRedis "github.com/helio-search/helio/internal/db/redis"
	logpkg "github.com/helio-search/helio/internal/logger"
	"github.com/helio-search/helio/internal/metrics"
	chiTransport "github.com/helio-search/helio/internal/transport/chi"
	openaiTransport "github.com/helio-search/helio/internal/transport/openai"
	healthuc "github.com/helio-search/helio/internal/usecase/health"
	searchuc "github.com/helio-search/helio/internal/usecase/search"
	"github.com/helio-search/helio/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting helio simulator",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	// Register session and answer metrics explicitly (no init())
	metrics.RegisterSessionMetrics()
	metrics.RegisterAnswerMetrics()

	// Optional store: only used for the health endpoint here; the client
	// side owns usage counting.
	var store db.Store
	if len(cfg.Database.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
	}

	searchSvc := searchuc.New(defaultCorpus(), logger)

	var answerer chiTransport.Answerer
	var answerChecker healthuc.AnswerChecker
	if cfg.Answer.APIKey != "" {
		oa := openaiTransport.NewAnswerer(&openaiTransport.Config{
			APIKey:  cfg.Answer.APIKey,
			BaseURL: cfg.Answer.BaseURL,
			Model:   cfg.Answer.Model,
			Logger:  logger,
		})
		answerer = oa
		answerChecker = oa
		logger.Info("Answer provider configured", zap.String("model", cfg.Answer.Model))
	} else {
		answerer = chiTransport.StaticAnswerer{}
		logger.Info("No answer provider configured, using canned answers")
	}

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, answerChecker)

	server := chiTransport.NewServer(searchSvc, answerer, healthSvc, logger,
		chiTransport.WithFrameDelay(time.Duration(cfg.HTTP.FrameDelayMs)*time.Millisecond),
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     server.Router(cfg.Auth.APIKeys),
		ReadTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		// WriteTimeout stays at the configured value; zero disables it so
		// long-lived streams are not cut off mid-session.
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// defaultCorpus is the simulator's built-in document set. Dates are spread
// out so the recency bias visibly reorders hybrid results.
func defaultCorpus() []searchuc.Document {
	return []searchuc.Document{
		{
			ID:        "pricing",
			Title:     "Pricing",
			URL:       "https://docs.example.com/pricing",
			Snippet:   "The standard plan costs ten dollars per month, billed annually.",
			Tags:      map[string]string{"section": "billing"},
			Numerics:  map[string]float64{"version": 3},
			UpdatedAt: time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "billing-faq",
			Title:     "Billing FAQ",
			URL:       "https://docs.example.com/billing-faq",
			Snippet:   "Answers to common billing and invoicing questions, including refunds.",
			Tags:      map[string]string{"section": "billing"},
			Numerics:  map[string]float64{"version": 2},
			UpdatedAt: time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "changelog",
			Title:     "Changelog",
			URL:       "https://docs.example.com/changelog",
			Snippet:   "Release notes for the latest platform updates and fixes.",
			Tags:      map[string]string{"section": "releases", "tag": "changelog"},
			Numerics:  map[string]float64{"version": 12},
			UpdatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "quickstart",
			Title:     "Quickstart",
			URL:       "https://docs.example.com/quickstart",
			Snippet:   "Install the CLI, authenticate, and run your first search in minutes.",
			Tags:      map[string]string{"section": "guides"},
			Numerics:  map[string]float64{"version": 5},
			UpdatedAt: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "api-reference",
			Title:     "API Reference",
			URL:       "https://docs.example.com/api",
			Snippet:   "Complete reference for the streaming search API and its event types.",
			Tags:      map[string]string{"section": "reference"},
			Numerics:  map[string]float64{"version": 7},
			UpdatedAt: time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC),
		},
	}
}
