// Package survey implements the server-side lead-qualification scoring for
// the RCM validation survey. It is intentionally dependency-free: it imports
// nothing from internal/ and can be tested without a database.
package survey

import "fmt"

// ─── QUESTION SLOTS ───────────────────────────────────────────────────────────

// QuestionID identifies one of the five fixed question slots. The string
// values match the keys the front-end sends in the answers object.
type QuestionID string

const (
	QuestionRole      QuestionID = "q1" // respondent role
	QuestionOrgSize   QuestionID = "q2" // organization size tier
	QuestionChallenge QuestionID = "q3" // primary RCM challenge
	QuestionImpact    QuestionID = "q4" // monthly financial impact
	QuestionReadiness QuestionID = "q5" // AI adoption readiness
)

// questionIDs lists every slot in survey order.
var questionIDs = []QuestionID{
	QuestionRole,
	QuestionOrgSize,
	QuestionChallenge,
	QuestionImpact,
	QuestionReadiness,
}

// ─── WEIGHT TABLES ────────────────────────────────────────────────────────────

// Per-slot weight bounds. Every option weight is in [minWeight, maxWeight],
// so the maximum attainable total is maxWeight × len(questionIDs) = 25.
const (
	minWeight = 1
	maxWeight = 5
)

// MaxScore is the highest total a submission can reach.
const MaxScore = maxWeight * 5

// weightTable maps each question slot to its option → weight table.
// One declarative structure rather than per-question literals scattered
// through the handlers; ValidateWeights checks it at startup.
var weightTable = map[QuestionID]map[string]int{
	QuestionRole: {
		"rcm-director":        5,
		"practice-admin":      5,
		"finance-controller":  4,
		"billing-manager":     4,
		"it-manager":          3,
		"clinical-supervisor": 3,
		"quality-manager":     3,
		"other-healthcare":    1,
	},
	QuestionOrgSize: {
		"mega-system": 5,
		"large":       4,
		"medium":      4,
		"small":       2,
		"very-small":  1,
	},
	QuestionChallenge: {
		"nphies-compliance":  5,
		"staffing-shortage":  4,
		"manual-processes":   4,
		"denial-management":  4,
		"system-integration": 3,
		"cash-flow":          2,
	},
	QuestionImpact: {
		"critical-impact": 5,
		"high-impact":     4,
		"medium-impact":   3,
		"low-impact":      2,
		"minimal":         1,
	},
	QuestionReadiness: {
		"ai-pioneer":          5,
		"very-open":           4,
		"open-with-pilot":     4,
		"cautious-proven":     3,
		"regulatory-concerns": 2,
		"traditional-focus":   1,
	},
}

// fallbackWeights maps the coarse three-level qualifier carried on each
// option to a weight, used when an answer value is not in the slot's table
// (e.g. a new option shipped to the front-end before the backend).
var fallbackWeights = map[string]int{
	"high":   3,
	"medium": 2,
	"low":    1,
}

// ValidateWeights checks the weight tables for completeness and range.
// Call once at startup — the server refuses to start on a bad table rather
// than silently scoring submissions wrong.
func ValidateWeights() error {
	for _, q := range questionIDs {
		table, ok := weightTable[q]
		if !ok {
			return fmt.Errorf("survey: question %s has no weight table", q)
		}
		if len(table) == 0 {
			return fmt.Errorf("survey: question %s weight table is empty", q)
		}
		for option, w := range table {
			if w < minWeight || w > maxWeight {
				return fmt.Errorf("survey: question %s option %q weight %d out of range [%d,%d]",
					q, option, w, minWeight, maxWeight)
			}
		}
	}
	return nil
}
