package survey_test

import (
	"testing"

	"github.com/brainsait/rcm-survey-api/internal/survey"
)

// ─── Weight ───────────────────────────────────────────────────────────────────

func TestWeight_KnownOptions(t *testing.T) {
	tests := []struct {
		q     survey.QuestionID
		value string
		want  int
	}{
		{survey.QuestionRole, "rcm-director", 5},
		{survey.QuestionRole, "practice-admin", 5},
		{survey.QuestionRole, "billing-manager", 4},
		{survey.QuestionRole, "other-healthcare", 1},
		{survey.QuestionOrgSize, "mega-system", 5},
		{survey.QuestionOrgSize, "large", 4},
		{survey.QuestionOrgSize, "very-small", 1},
		{survey.QuestionChallenge, "nphies-compliance", 5},
		{survey.QuestionChallenge, "cash-flow", 2},
		{survey.QuestionImpact, "critical-impact", 5},
		{survey.QuestionImpact, "minimal", 1},
		{survey.QuestionReadiness, "ai-pioneer", 5},
		{survey.QuestionReadiness, "traditional-focus", 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.q)+"/"+tt.value, func(t *testing.T) {
			got := survey.Weight(tt.q, tt.value, "")
			if got != tt.want {
				t.Errorf("Weight(%s, %q) = %d, want %d", tt.q, tt.value, got, tt.want)
			}
		})
	}
}

func TestWeight_UnknownValueUsesQualifierFallback(t *testing.T) {
	tests := []struct {
		qualify string
		want    int
	}{
		{"high", 3},
		{"medium", 2},
		{"low", 1},
		{"", 1},        // no qualifier at all
		{"whatever", 1}, // unrecognized qualifier
	}
	for _, tt := range tests {
		got := survey.Weight(survey.QuestionRole, "brand-new-option", tt.qualify)
		if got != tt.want {
			t.Errorf("qualify=%q: got %d, want %d", tt.qualify, got, tt.want)
		}
	}
}

func TestWeight_TrimsValue(t *testing.T) {
	if got := survey.Weight(survey.QuestionRole, "  rcm-director  ", ""); got != 5 {
		t.Errorf("got %d, want 5", got)
	}
}

func TestValidateWeights(t *testing.T) {
	if err := survey.ValidateWeights(); err != nil {
		t.Errorf("weight tables should validate: %v", err)
	}
}

// ─── TierForScore ─────────────────────────────────────────────────────────────

func TestTierForScore(t *testing.T) {
	tests := []struct {
		score int
		want  survey.Tier
	}{
		{25, survey.TierCritical},
		{20, survey.TierCritical},
		{19, survey.TierHigh},
		{15, survey.TierHigh},
		{14, survey.TierMedium},
		{10, survey.TierMedium},
		{9, survey.TierLow},
		{6, survey.TierLow},
		{5, survey.TierMinimal},
		{0, survey.TierMinimal},
	}
	for _, tt := range tests {
		if got := survey.TierForScore(tt.score); got != tt.want {
			t.Errorf("TierForScore(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestTierForScore_Monotonic(t *testing.T) {
	rank := map[survey.Tier]int{
		survey.TierMinimal:  0,
		survey.TierLow:      1,
		survey.TierMedium:   2,
		survey.TierHigh:     3,
		survey.TierCritical: 4,
	}
	prev := -1
	for score := 0; score <= survey.MaxScore; score++ {
		r := rank[survey.TierForScore(score)]
		if r < prev {
			t.Fatalf("tier rank decreased at score %d", score)
		}
		prev = r
	}
}

// ─── PriorityScore ────────────────────────────────────────────────────────────

func TestPriorityScore(t *testing.T) {
	tests := []struct {
		total int
		tier  survey.Tier
		want  int
	}{
		{24, survey.TierCritical, 34},
		{16, survey.TierHigh, 21},
		{12, survey.TierMedium, 12},
		{7, survey.TierLow, 7},
		{0, survey.TierMinimal, 0},
	}
	for _, tt := range tests {
		if got := survey.PriorityScore(tt.total, tt.tier); got != tt.want {
			t.Errorf("PriorityScore(%d, %s) = %d, want %d", tt.total, tt.tier, got, tt.want)
		}
	}
}

// ─── Recommendations ──────────────────────────────────────────────────────────

func TestRecommendations_RuleGroupsInFixedOrder(t *testing.T) {
	recs := survey.Recommendations("rcm-director", "nphies-compliance", "critical-impact")
	want := []string{
		"Strategic RCM transformation with executive dashboard",
		"NPHIES-compliant automated submission and tracking",
		"Priority implementation with immediate ROI focus",
	}
	if len(recs) != len(want) {
		t.Fatalf("expected %d recommendations, got %d: %v", len(want), len(recs), recs)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, recs[i], want[i])
		}
	}
}

func TestRecommendations_UnrecognizedValuesContributeNothing(t *testing.T) {
	if recs := survey.Recommendations("astronaut", "bad-coffee", "none"); len(recs) != 0 {
		t.Errorf("expected no recommendations, got %v", recs)
	}
}

func TestRecommendations_PartialMatch(t *testing.T) {
	recs := survey.Recommendations("it-manager", "", "high-impact")
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d: %v", len(recs), recs)
	}
	if recs[0] != "System integration and API-based workflow automation" {
		t.Errorf("first recommendation: got %q", recs[0])
	}
}

// ─── TotalScore ───────────────────────────────────────────────────────────────

func answer(value string) *survey.Answer {
	return &survey.Answer{Value: value, Text: value}
}

func TestTotalScore_SumsPresentSlots(t *testing.T) {
	answers := survey.AnswerSet{
		Q1: answer("rcm-director"),      // 5
		Q3: answer("nphies-compliance"), // 5
		Q5: answer("cautious-proven"),   // 3
	}
	if got := answers.TotalScore(); got != 13 {
		t.Errorf("TotalScore = %d, want 13", got)
	}
}

func TestTotalScore_EmptySetIsZero(t *testing.T) {
	if got := (survey.AnswerSet{}).TotalScore(); got != 0 {
		t.Errorf("TotalScore = %d, want 0", got)
	}
}

func TestTotalScore_ReselectionReplacesContribution(t *testing.T) {
	answers := survey.AnswerSet{Q1: answer("rcm-director")} // 5
	first := answers.TotalScore()

	// Selecting the same option again must not add.
	answers.Q1 = answer("rcm-director")
	if got := answers.TotalScore(); got != first {
		t.Errorf("same re-selection changed total: %d -> %d", first, got)
	}

	// Selecting a different option replaces the slot's contribution.
	answers.Q1 = answer("other-healthcare") // 1
	if got := answers.TotalScore(); got != 1 {
		t.Errorf("after re-selection: got %d, want 1", got)
	}
}

func TestTotalScore_MaxAttainable(t *testing.T) {
	answers := survey.AnswerSet{
		Q1: answer("rcm-director"),
		Q2: answer("mega-system"),
		Q3: answer("nphies-compliance"),
		Q4: answer("critical-impact"),
		Q5: answer("ai-pioneer"),
	}
	if got := answers.TotalScore(); got != survey.MaxScore {
		t.Errorf("TotalScore = %d, want %d", got, survey.MaxScore)
	}
}
