// Package analytics builds the dashboard and benchmark snapshots served by
// the API. Snapshots are marshaled once and cached as raw JSON so a cache hit
// replays the exact bytes the first request served.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/brainsait/rcm-survey-api/internal/cache"
	"github.com/brainsait/rcm-survey-api/internal/store"
)

// Cache key prefixes. Dashboard keys are bucketed by UTC day so the snapshot
// rolls over at midnight even if the TTL has not elapsed.
const (
	dashboardKeyPrefix       = "analytics_dashboard_"
	recommendationsKeyPrefix = "recommendations_"

	dashboardTTL       = 24 * time.Hour
	recommendationsTTL = 6 * time.Hour

	trendMonths = 12
)

// advisoryItems is the static guidance attached to every benchmark payload.
var advisoryItems = []string{
	"Implement automated NPHIES submission workflows",
	"Deploy AI-powered denial prediction and prevention",
	"Establish centralized revenue cycle dashboard",
	"Invest in staff training for emerging technologies",
}

// Aggregator computes and caches the analytics payloads.
type Aggregator struct {
	q      store.Querier
	cache  cache.Cache
	logger *slog.Logger

	// now is injectable for day-rollover tests.
	now func() time.Time
}

// New constructs an Aggregator over the given querier and cache.
func New(q store.Querier, c cache.Cache, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		q:      q,
		cache:  c,
		logger: logger,
		now:    time.Now,
	}
}

// ─── DASHBOARD ────────────────────────────────────────────────────────────────

type dashboardSummary struct {
	TotalResponses int64   `json:"totalResponses"`
	AvgScore       float64 `json:"avgScore"`
	GeneratedAt    string  `json:"generatedAt"`
}

type dashboardSnapshot struct {
	Summary                   dashboardSummary       `json:"summary"`
	QualificationDistribution []store.TierCount      `json:"qualificationDistribution"`
	ChallengeDistribution     []store.ChallengeCount `json:"challengeDistribution"`
	MonthlyTrends             []store.MonthlyTrend   `json:"monthlyTrends"`
}

// Dashboard returns the cached dashboard snapshot for today, computing and
// caching it on a miss.
func (a *Aggregator) Dashboard(ctx context.Context) (json.RawMessage, error) {
	key := dashboardKeyPrefix + a.now().UTC().Format("2006-01-02")

	if raw, ok := a.cache.Get(key); ok {
		return raw, nil
	}

	total, err := a.q.CountResponses(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: dashboard: %w", err)
	}
	avg, err := a.q.AverageScore(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: dashboard: %w", err)
	}
	tiers, err := a.q.QualificationDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: dashboard: %w", err)
	}
	challenges, err := a.q.ChallengeDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: dashboard: %w", err)
	}
	trends, err := a.q.MonthlyTrends(ctx, trendMonths)
	if err != nil {
		return nil, fmt.Errorf("analytics: dashboard: %w", err)
	}

	snapshot := dashboardSnapshot{
		Summary: dashboardSummary{
			TotalResponses: total,
			AvgScore:       round1(avg),
			GeneratedAt:    a.now().UTC().Format(time.RFC3339),
		},
		QualificationDistribution: emptyIfNil(tiers),
		ChallengeDistribution:     emptyIfNil(challenges),
		MonthlyTrends:             emptyIfNil(trends),
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("analytics: marshal dashboard: %w", err)
	}

	a.cache.Put(key, raw, dashboardTTL)
	return raw, nil
}

// ─── BENCHMARKS ───────────────────────────────────────────────────────────────

type benchmarkSnapshot struct {
	OrganizationType string            `json:"organizationType"`
	Benchmarks       []store.Benchmark `json:"benchmarks"`
	Recommendations  []string          `json:"aiRecommendations"`
	GeneratedAt      string            `json:"generatedAt"`
}

// Recommendations returns the cached benchmark payload for one organization
// size, computing and caching it on a miss.
func (a *Aggregator) Recommendations(ctx context.Context, orgType string) (json.RawMessage, error) {
	key := recommendationsKeyPrefix + orgType

	if raw, ok := a.cache.Get(key); ok {
		return raw, nil
	}

	benchmarks, err := a.q.OrgBenchmarks(ctx, orgType)
	if err != nil {
		return nil, fmt.Errorf("analytics: benchmarks for %q: %w", orgType, err)
	}

	snapshot := benchmarkSnapshot{
		OrganizationType: orgType,
		Benchmarks:       emptyIfNil(benchmarks),
		Recommendations:  advisoryItems,
		GeneratedAt:      a.now().UTC().Format(time.RFC3339),
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("analytics: marshal benchmarks: %w", err)
	}

	a.cache.Put(key, raw, recommendationsTTL)
	return raw, nil
}

// round1 rounds to one decimal place for the dashboard summary.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// emptyIfNil keeps empty aggregates as [] in JSON rather than null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
