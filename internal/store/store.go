// Package store persists survey responses and audit entries in Postgres and
// serves the aggregate queries the analytics layer needs.
//
// Handlers and the aggregator depend on the Querier and AuditSink interfaces,
// both satisfied by *Store; tests inject in-memory stubs.
//
// Dependency rule: store imports survey only for none of it — records are
// plain flattened rows. It never imports api, analytics, ai, or email.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by GetResponse for an unknown id.
var ErrNotFound = errors.New("store: response not found")

// Querier is the read/write surface of the durable store.
type Querier interface {
	InsertResponse(ctx context.Context, rec ResponseRecord) error
	GetResponse(ctx context.Context, id uuid.UUID) (ResponseRecord, error)

	CountResponses(ctx context.Context) (int64, error)
	AverageScore(ctx context.Context) (float64, error)
	QualificationDistribution(ctx context.Context) ([]TierCount, error)
	ChallengeDistribution(ctx context.Context) ([]ChallengeCount, error)
	MonthlyTrends(ctx context.Context, limit int) ([]MonthlyTrend, error)
	OrgBenchmarks(ctx context.Context, orgSize string) ([]Benchmark, error)
}

// Store implements Querier and AuditSink over a live connection pool.
type Store struct {
	pool *sql.DB
}

// New creates a Store from a live connection pool. The pool must already be
// open and verified (PingContext) before calling New.
func New(pool *sql.DB) *Store {
	return &Store{pool: pool}
}

// Migrate creates the tables and indexes if they do not exist. Called once at
// startup — the server refuses to start if the schema cannot be applied.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS survey_responses (
			id                       UUID PRIMARY KEY,
			timestamp                TIMESTAMPTZ NOT NULL,
			client_timestamp         TEXT,
			contact_name             TEXT NOT NULL,
			contact_email            TEXT NOT NULL,
			contact_organization     TEXT NOT NULL,
			contact_phone            TEXT,
			contact_location         TEXT,
			contact_job_title        TEXT,
			role_value               TEXT,
			role_text                TEXT,
			role_score               SMALLINT NOT NULL DEFAULT 0,
			organization_size_value  TEXT,
			organization_size_text   TEXT,
			organization_size_score  SMALLINT NOT NULL DEFAULT 0,
			primary_challenge_value  TEXT,
			primary_challenge_text   TEXT,
			primary_challenge_score  SMALLINT NOT NULL DEFAULT 0,
			financial_impact_value   TEXT,
			financial_impact_text    TEXT,
			financial_impact_sar     DOUBLE PRECISION,
			financial_impact_score   SMALLINT NOT NULL DEFAULT 0,
			ai_readiness_value       TEXT,
			ai_readiness_text        TEXT,
			ai_readiness_score       SMALLINT NOT NULL DEFAULT 0,
			total_score              SMALLINT NOT NULL,
			qualification_level      TEXT NOT NULL,
			ai_recommendations       JSONB,
			priority_score           SMALLINT NOT NULL,
			processing_status        TEXT NOT NULL DEFAULT 'processed',
			language_preference      TEXT NOT NULL DEFAULT 'en',
			created_month            TEXT NOT NULL,
			version                  TEXT NOT NULL DEFAULT '2.0'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_survey_responses_created_month
			ON survey_responses (created_month)`,
		`CREATE INDEX IF NOT EXISTS idx_survey_responses_qualification
			ON survey_responses (qualification_level)`,
		`CREATE INDEX IF NOT EXISTS idx_survey_responses_org_size
			ON survey_responses (organization_size_value)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id               UUID PRIMARY KEY,
			timestamp        TIMESTAMPTZ NOT NULL,
			event_type       TEXT NOT NULL,
			action           TEXT NOT NULL,
			details          JSONB,
			success          BOOLEAN NOT NULL,
			compliance_flags JSONB
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// monthBucket formats a timestamp into the YYYY-MM trend bucket.
func monthBucket(t time.Time) string {
	return t.UTC().Format("2006-01")
}
