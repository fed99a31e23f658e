package survey

import "strings"

// ─── QUALIFICATION TIERS ──────────────────────────────────────────────────────

// Tier is the five-bucket qualification level. String values deliberately
// match the qualification_level column so they can be persisted without
// conversion.
type Tier string

const (
	TierCritical Tier = "critical" // exceptionally qualified, priority candidate
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierLow      Tier = "low"
	TierMinimal  Tier = "minimal"
)

// Tier thresholds — inclusive lower bounds, highest first.
const (
	criticalThreshold = 20
	highThreshold     = 15
	mediumThreshold   = 10
	lowThreshold      = 6
)

// KnownTier reports whether t is one of the five qualification tiers.
func KnownTier(t Tier) bool {
	switch t {
	case TierCritical, TierHigh, TierMedium, TierLow, TierMinimal:
		return true
	}
	return false
}

// TierForScore classifies a total score into a qualification tier. It is a
// monotonic step function over the fixed thresholds {20, 15, 10, 6}.
func TierForScore(score int) Tier {
	switch {
	case score >= criticalThreshold:
		return TierCritical
	case score >= highThreshold:
		return TierHigh
	case score >= mediumThreshold:
		return TierMedium
	case score >= lowThreshold:
		return TierLow
	default:
		return TierMinimal
	}
}

// PriorityScore adds the outreach-priority bonus to a total score:
// +10 for critical, +5 for high, nothing otherwise.
func PriorityScore(total int, tier Tier) int {
	switch tier {
	case TierCritical:
		return total + 10
	case TierHigh:
		return total + 5
	default:
		return total
	}
}

// ─── SCORING ──────────────────────────────────────────────────────────────────

// Weight returns the qualification weight for an answer to the given slot.
//
// Known option values use the slot's weight table. Unknown or missing values
// fall back to the coarse qualifier the option carries (high=3, medium=2,
// anything else 1) — never an error, so new front-end options degrade
// gracefully instead of rejecting the submission.
func Weight(q QuestionID, value, qualify string) int {
	if w, ok := weightTable[q][strings.TrimSpace(value)]; ok {
		return w
	}
	if w, ok := fallbackWeights[strings.TrimSpace(qualify)]; ok {
		return w
	}
	return fallbackWeights["low"]
}

// ─── RECOMMENDATIONS ─────────────────────────────────────────────────────────

// Recommendations produces the ordered, deduplicated advisory list for a
// submission. Three independent rule groups run in fixed order — role, then
// primary challenge, then financial impact — and each contributes at most one
// string. Unrecognized values contribute nothing.
func Recommendations(role, challenge, impact string) []string {
	var recs []string

	switch role {
	case "rcm-director", "practice-admin":
		recs = append(recs, "Strategic RCM transformation with executive dashboard")
	case "billing-manager":
		recs = append(recs, "Automated billing and denial management solutions")
	case "it-manager":
		recs = append(recs, "System integration and API-based workflow automation")
	}

	switch challenge {
	case "nphies-compliance":
		recs = append(recs, "NPHIES-compliant automated submission and tracking")
	case "staffing-shortage":
		recs = append(recs, "AI-powered staff augmentation and training programs")
	case "manual-processes":
		recs = append(recs, "End-to-end process automation with RPA")
	}

	switch impact {
	case "critical-impact", "high-impact":
		recs = append(recs, "Priority implementation with immediate ROI focus")
	}

	return dedupe(recs)
}

// dedupe removes repeated strings, preserving first-occurrence order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
