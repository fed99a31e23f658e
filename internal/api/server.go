// Package api implements the HTTP layer for the RCM survey backend.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brainsait/rcm-survey-api/internal/ai"
	"github.com/brainsait/rcm-survey-api/internal/analytics"
	"github.com/brainsait/rcm-survey-api/internal/cache"
	"github.com/brainsait/rcm-survey-api/internal/email"
	"github.com/brainsait/rcm-survey-api/internal/store"
)

// serviceName appears in the health payload.
const serviceName = "rcm-survey-api"

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// Version is reported by the health endpoint and stamped on submissions
	// that arrive without one.
	Version string

	// AdvisoryTimeout bounds the AI insight call inside the submit pipeline.
	AdvisoryTimeout time.Duration

	// SubmissionCacheTTL is how long a stored submission stays readable from
	// the hot cache.
	SubmissionCacheTTL time.Duration

	// LeadAlertAddr is the sales inbox for qualified-lead emails. Empty
	// disables alerts.
	LeadAlertAddr string
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// q handles all reads and writes against the durable store.
	q store.Querier

	// audit records compliance events. Appends are best-effort.
	audit store.AuditSink

	// cache holds hot copies of submissions and analytics snapshots.
	cache cache.Cache

	// insighter generates AI commentary for qualified submissions.
	insighter ai.Insighter

	// mailer sends the qualified-lead alert email.
	mailer email.Sender

	// agg serves the dashboard and benchmark payloads.
	agg *analytics.Aggregator

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(
	q store.Querier,
	audit store.AuditSink,
	c cache.Cache,
	insighter ai.Insighter,
	mailer email.Sender,
	agg *analytics.Aggregator,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	s := &Server{
		q:         q,
		audit:     audit,
		cache:     c,
		insighter: insighter,
		mailer:    mailer,
		agg:       agg,
		cfg:       cfg,
		logger:    logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/health", s.handleHealth)

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Post("/submit", s.handleSubmit)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/recommendations/{orgType}", s.handleRecommendations)
		r.Get("/responses/{responseID}", s.handleGetResponse)
	})

	// Unknown routes and wrong methods get JSON envelopes, not plain text.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondErr(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// handleHealth reports liveness. It deliberately does not touch the database:
// a degraded store should fail submits loudly, not flap the health check.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"version":   s.cfg.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}
