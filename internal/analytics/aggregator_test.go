package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/brainsait/rcm-survey-api/internal/cache"
	"github.com/brainsait/rcm-survey-api/internal/store"
)

// ─── STUBS ────────────────────────────────────────────────────────────────────

type stubQuerier struct {
	store.Querier

	total      int64
	avg        float64
	tiers      []store.TierCount
	challenges []store.ChallengeCount
	trends     []store.MonthlyTrend
	benchmarks []store.Benchmark
	err        error

	countCalls int
}

func (s *stubQuerier) CountResponses(_ context.Context) (int64, error) {
	s.countCalls++
	return s.total, s.err
}
func (s *stubQuerier) AverageScore(_ context.Context) (float64, error) { return s.avg, s.err }
func (s *stubQuerier) QualificationDistribution(_ context.Context) ([]store.TierCount, error) {
	return s.tiers, s.err
}
func (s *stubQuerier) ChallengeDistribution(_ context.Context) ([]store.ChallengeCount, error) {
	return s.challenges, s.err
}
func (s *stubQuerier) MonthlyTrends(_ context.Context, _ int) ([]store.MonthlyTrend, error) {
	return s.trends, s.err
}
func (s *stubQuerier) OrgBenchmarks(_ context.Context, _ string) ([]store.Benchmark, error) {
	return s.benchmarks, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAggregator(q *stubQuerier) *Aggregator {
	return New(q, cache.NewMemory(), discardLogger())
}

// ─── Dashboard ────────────────────────────────────────────────────────────────

func TestDashboard_Snapshot(t *testing.T) {
	q := &stubQuerier{
		total: 42,
		avg:   17.26,
		tiers: []store.TierCount{{QualificationLevel: "high", Count: 20}},
		challenges: []store.ChallengeCount{
			{ChallengeValue: "nphies-compliance", Count: 15},
		},
		trends: []store.MonthlyTrend{
			{Month: "2026-08", Responses: 10, AvgScore: 18.5, AvgImpactSAR: 250000},
		},
	}
	agg := testAggregator(q)

	raw, err := agg.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var snap struct {
		Summary struct {
			TotalResponses int64   `json:"totalResponses"`
			AvgScore       float64 `json:"avgScore"`
			GeneratedAt    string  `json:"generatedAt"`
		} `json:"summary"`
		QualificationDistribution []store.TierCount      `json:"qualificationDistribution"`
		ChallengeDistribution     []store.ChallengeCount `json:"challengeDistribution"`
		MonthlyTrends             []store.MonthlyTrend   `json:"monthlyTrends"`
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}

	if snap.Summary.TotalResponses != 42 {
		t.Errorf("totalResponses = %d, want 42", snap.Summary.TotalResponses)
	}
	if snap.Summary.AvgScore != 17.3 {
		t.Errorf("avgScore = %v, want 17.3 (rounded to one decimal)", snap.Summary.AvgScore)
	}
	if snap.Summary.GeneratedAt == "" {
		t.Error("generatedAt missing")
	}
	if len(snap.QualificationDistribution) != 1 || snap.QualificationDistribution[0].Count != 20 {
		t.Errorf("qualificationDistribution = %v", snap.QualificationDistribution)
	}
	if len(snap.MonthlyTrends) != 1 {
		t.Errorf("monthlyTrends = %v", snap.MonthlyTrends)
	}
}

func TestDashboard_CacheHitReplaysBytes(t *testing.T) {
	q := &stubQuerier{total: 5, avg: 12}
	agg := testAggregator(q)
	ctx := context.Background()

	first, err := agg.Dashboard(ctx)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	// Mutate the stub; the cached snapshot must win.
	q.total = 99

	second, err := agg.Dashboard(ctx)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("cache hit returned different bytes than the first response")
	}
	if q.countCalls != 1 {
		t.Errorf("querier called %d times, want 1", q.countCalls)
	}
}

func TestDashboard_DayRolloverRecomputes(t *testing.T) {
	q := &stubQuerier{total: 5}
	agg := testAggregator(q)
	ctx := context.Background()

	day := time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return day }

	if _, err := agg.Dashboard(ctx); err != nil {
		t.Fatalf("first call: %v", err)
	}

	agg.now = func() time.Time { return day.Add(2 * time.Hour) } // next UTC day

	if _, err := agg.Dashboard(ctx); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if q.countCalls != 2 {
		t.Errorf("querier called %d times across the rollover, want 2", q.countCalls)
	}
}

func TestDashboard_EmptyTableServesZeroes(t *testing.T) {
	agg := testAggregator(&stubQuerier{})

	raw, err := agg.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Empty aggregates must serialize as [] not null.
	for _, field := range []string{`"qualificationDistribution":[]`, `"challengeDistribution":[]`, `"monthlyTrends":[]`} {
		if !bytes.Contains(raw, []byte(field)) {
			t.Errorf("snapshot missing %s: %s", field, raw)
		}
	}
}

func TestDashboard_QueryErrorPropagates(t *testing.T) {
	agg := testAggregator(&stubQuerier{err: errors.New("connection refused")})

	if _, err := agg.Dashboard(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// ─── Recommendations ──────────────────────────────────────────────────────────

func TestRecommendations_Snapshot(t *testing.T) {
	q := &stubQuerier{
		benchmarks: []store.Benchmark{
			{ChallengeValue: "denial-management", ReadinessValue: "very-open", AvgScore: 19, Count: 7},
		},
	}
	agg := testAggregator(q)

	raw, err := agg.Recommendations(context.Background(), "large")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var snap struct {
		OrganizationType string            `json:"organizationType"`
		Benchmarks       []store.Benchmark `json:"benchmarks"`
		Recommendations  []string          `json:"aiRecommendations"`
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if snap.OrganizationType != "large" {
		t.Errorf("organizationType = %q", snap.OrganizationType)
	}
	if len(snap.Benchmarks) != 1 {
		t.Errorf("benchmarks = %v", snap.Benchmarks)
	}
	if len(snap.Recommendations) != 4 {
		t.Errorf("aiRecommendations = %v, want the 4 advisory items", snap.Recommendations)
	}
	if snap.Recommendations[0] != "Implement automated NPHIES submission workflows" {
		t.Errorf("first advisory item = %q", snap.Recommendations[0])
	}
}

func TestRecommendations_KeyedByOrgType(t *testing.T) {
	q := &stubQuerier{}
	agg := testAggregator(q)
	ctx := context.Background()

	largeRaw, err := agg.Recommendations(ctx, "large")
	if err != nil {
		t.Fatalf("large: %v", err)
	}
	smallRaw, err := agg.Recommendations(ctx, "small")
	if err != nil {
		t.Fatalf("small: %v", err)
	}

	if bytes.Equal(largeRaw, smallRaw) {
		t.Error("different org types produced identical payloads")
	}
}
