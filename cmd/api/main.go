package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/brainsait/rcm-survey-api/internal/ai"
	"github.com/brainsait/rcm-survey-api/internal/analytics"
	"github.com/brainsait/rcm-survey-api/internal/api"
	"github.com/brainsait/rcm-survey-api/internal/cache"
	"github.com/brainsait/rcm-survey-api/internal/config"
	"github.com/brainsait/rcm-survey-api/internal/email"
	"github.com/brainsait/rcm-survey-api/internal/store"
	"github.com/brainsait/rcm-survey-api/internal/survey"
)

// version is stamped on health responses and on submissions that arrive
// without one.
const version = "2.0"

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	// The weight table is a hand-maintained constant; refuse to start if an
	// edit broke the 1..5 bounds.
	if err := survey.ValidateWeights(); err != nil {
		return fmt.Errorf("weight table: %w", err)
	}

	// ── Database ──────────────────────────────────────────────────────────────
	pool, err := openDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	st := store.New(pool)

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelMigrate()
	if err := st.Migrate(migrateCtx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	memCache := cache.NewMemory()

	// ── AI ────────────────────────────────────────────────────────────────────
	// DeepSeek is primary. Anthropic is the fallback when ANTHROPIC_API_KEY is
	// also set. In production, set both keys for maximum resilience.
	var insighter ai.Insighter
	switch {
	case !cfg.EnableAIAnalysis:
		insighter = ai.Disabled{}
		logger.Info("ai: analysis disabled")
	case cfg.DeepSeekAPIKey != "" && cfg.AnthropicAPIKey != "":
		primary := ai.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekModel)
		secondary := ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		insighter = ai.NewFallbackInsighter(primary, secondary, logger)
		logger.Info("ai: using DeepSeek with Anthropic fallback")
	case cfg.DeepSeekAPIKey != "":
		insighter = ai.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekModel)
		logger.Info("ai: using DeepSeek only")
	default:
		insighter = ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		logger.Info("ai: using Anthropic only")
	}

	// ── Email (Resend) ────────────────────────────────────────────────────────
	var mailer email.Sender
	if cfg.ResendAPIKey != "" {
		mailer = email.NewResendClient(cfg.ResendAPIKey, cfg.EmailFromAddr, cfg.EmailFromName)
	} else {
		mailer = email.Noop{}
		logger.Info("email: no API key, lead alerts disabled")
	}

	// ── Analytics ─────────────────────────────────────────────────────────────
	agg := analytics.New(st, memCache, logger)
	refresher := analytics.NewRefresher(agg, cfg.RefreshInterval, logger)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		st, // *Store satisfies store.Querier
		st, // and store.AuditSink
		memCache,
		insighter,
		mailer,
		agg,
		api.Config{
			Env:                cfg.Env,
			Version:            version,
			AdvisoryTimeout:    cfg.AdvisoryTimeout,
			SubmissionCacheTTL: cfg.SubmissionCacheTTL,
			LeadAlertAddr:      cfg.LeadAlertAddr,
		},
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	// Root context cancelled by OS signal. Refresher and HTTP server both
	// respect it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Keep the dashboard snapshot warm in the background.
	go refresher.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until either a signal arrives or the server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight HTTP requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// openDB opens and verifies the connection pool.
func openDB(dsn string) (*sql.DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	// Tune the connection pool.
	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(5 * time.Minute)
	pool.SetConnMaxIdleTime(2 * time.Minute)

	// Verify the connection is reachable before proceeding.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}
