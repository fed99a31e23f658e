package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Aggregate row types. JSON tags mirror the column names so dashboard
// consumers see the same shape the warehouse exports use.

type TierCount struct {
	QualificationLevel string `json:"qualification_level"`
	Count              int64  `json:"count"`
}

type ChallengeCount struct {
	ChallengeValue string `json:"primary_challenge_value"`
	Count          int64  `json:"count"`
}

type MonthlyTrend struct {
	Month        string  `json:"created_month"`
	Responses    int64   `json:"responses"`
	AvgScore     float64 `json:"avg_score"`
	AvgImpactSAR float64 `json:"avg_financial_impact"`
}

type Benchmark struct {
	ChallengeValue string  `json:"primary_challenge_value"`
	ReadinessValue string  `json:"ai_readiness_value"`
	AvgScore       float64 `json:"avg_score"`
	AvgImpactSAR   float64 `json:"avg_financial_impact"`
	Count          int64   `json:"count"`
}

// CountResponses returns the total submission count.
func (s *Store) CountResponses(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM survey_responses`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count responses: %w", err)
	}
	return n, nil
}

// AverageScore returns the mean total score across all submissions, 0 when
// the table is empty.
func (s *Store) AverageScore(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := s.pool.QueryRowContext(ctx, `SELECT AVG(total_score) FROM survey_responses`).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("store: average score: %w", err)
	}
	return avg.Float64, nil
}

// QualificationDistribution counts submissions per tier, highest count first.
func (s *Store) QualificationDistribution(ctx context.Context) ([]TierCount, error) {
	const q = `
		SELECT qualification_level, COUNT(*) AS count
		FROM survey_responses
		GROUP BY qualification_level
		ORDER BY count DESC`

	rows, err := s.pool.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: qualification distribution: %w", err)
	}
	defer rows.Close()

	var out []TierCount
	for rows.Next() {
		var tc TierCount
		if err := rows.Scan(&tc.QualificationLevel, &tc.Count); err != nil {
			return nil, fmt.Errorf("store: qualification distribution: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// ChallengeDistribution counts submissions per selected challenge, skipping
// contact-only rows where no challenge was answered.
func (s *Store) ChallengeDistribution(ctx context.Context) ([]ChallengeCount, error) {
	const q = `
		SELECT primary_challenge_value, COUNT(*) AS count
		FROM survey_responses
		WHERE primary_challenge_value IS NOT NULL
		GROUP BY primary_challenge_value
		ORDER BY count DESC`

	rows, err := s.pool.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: challenge distribution: %w", err)
	}
	defer rows.Close()

	var out []ChallengeCount
	for rows.Next() {
		var cc ChallengeCount
		if err := rows.Scan(&cc.ChallengeValue, &cc.Count); err != nil {
			return nil, fmt.Errorf("store: challenge distribution: %w", err)
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

// MonthlyTrends returns per-month volume and averages for the most recent
// limit months, newest first.
func (s *Store) MonthlyTrends(ctx context.Context, limit int) ([]MonthlyTrend, error) {
	const q = `
		SELECT created_month,
			COUNT(*) AS responses,
			COALESCE(AVG(total_score), 0) AS avg_score,
			COALESCE(AVG(financial_impact_sar), 0) AS avg_financial_impact
		FROM survey_responses
		GROUP BY created_month
		ORDER BY created_month DESC
		LIMIT $1`

	rows, err := s.pool.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("store: monthly trends: %w", err)
	}
	defer rows.Close()

	var out []MonthlyTrend
	for rows.Next() {
		var mt MonthlyTrend
		if err := rows.Scan(&mt.Month, &mt.Responses, &mt.AvgScore, &mt.AvgImpactSAR); err != nil {
			return nil, fmt.Errorf("store: monthly trends: %w", err)
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

// OrgBenchmarks aggregates challenge/readiness pairings for organizations of
// the given size, largest cohort first.
func (s *Store) OrgBenchmarks(ctx context.Context, orgSize string) ([]Benchmark, error) {
	const q = `
		SELECT primary_challenge_value, ai_readiness_value,
			COALESCE(AVG(total_score), 0) AS avg_score,
			COALESCE(AVG(financial_impact_sar), 0) AS avg_financial_impact,
			COUNT(*) AS count
		FROM survey_responses
		WHERE organization_size_value = $1
			AND primary_challenge_value IS NOT NULL
			AND ai_readiness_value IS NOT NULL
		GROUP BY primary_challenge_value, ai_readiness_value
		ORDER BY count DESC`

	rows, err := s.pool.QueryContext(ctx, q, orgSize)
	if err != nil {
		return nil, fmt.Errorf("store: org benchmarks: %w", err)
	}
	defer rows.Close()

	var out []Benchmark
	for rows.Next() {
		var b Benchmark
		if err := rows.Scan(&b.ChallengeValue, &b.ReadinessValue, &b.AvgScore, &b.AvgImpactSAR, &b.Count); err != nil {
			return nil, fmt.Errorf("store: org benchmarks: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
