package survey

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Answer is one answered question slot as sent by the front-end. Score is the
// client-side preview weight; the pipeline recomputes it server-side and the
// server value always wins.
type Answer struct {
	Value   string `json:"value"`
	Text    string `json:"text"`
	Qualify string `json:"qualify,omitempty"` // coarse qualifier: high | medium | low

	Score int `json:"aiScore"`

	// SAR is the estimated monthly loss in Saudi riyal. Only the financial
	// impact slot carries it.
	SAR *float64 `json:"sar,omitempty"`
}

// Contact holds the respondent's details from the final survey step.
type Contact struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Phone        string `json:"phone,omitempty"`
	Location     string `json:"location,omitempty"`
	JobTitle     string `json:"jobTitle,omitempty"`
}

// AnswerSet holds the five optional answer slots plus the required contact
// block. A nil slot means the question was skipped.
type AnswerSet struct {
	Q1      *Answer `json:"q1,omitempty"`
	Q2      *Answer `json:"q2,omitempty"`
	Q3      *Answer `json:"q3,omitempty"`
	Q4      *Answer `json:"q4,omitempty"`
	Q5      *Answer `json:"q5,omitempty"`
	Contact Contact `json:"contact"`
}

// Submission is the full survey payload. Score, Recommendations and
// QualificationLevel arrive from the client for UX preview purposes only;
// Recompute replaces all three before anything is persisted.
type Submission struct {
	Answers            AnswerSet `json:"answers"`
	Score              float64   `json:"score"`
	Recommendations    []string  `json:"aiRecommendations"`
	QualificationLevel Tier      `json:"qualificationLevel"`
	Timestamp          string    `json:"timestamp"`
	Version            string    `json:"version"`
}

// slot pairs a question id with its (possibly nil) answer.
type slot struct {
	id     QuestionID
	answer *Answer
}

func (a *AnswerSet) slots() []slot {
	return []slot{
		{QuestionRole, a.Q1},
		{QuestionOrgSize, a.Q2},
		{QuestionChallenge, a.Q3},
		{QuestionImpact, a.Q4},
		{QuestionReadiness, a.Q5},
	}
}

// value returns the raw option value for a slot, or "" when unanswered.
func value(a *Answer) string {
	if a == nil {
		return ""
	}
	return a.Value
}

// ─── VALIDATION ───────────────────────────────────────────────────────────────

// ValidationError describes a malformed or missing required field. It is
// user-correctable and maps to a 400 response at the HTTP layer.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// Validate checks the submission against the fixed schema. Unknown answer
// values pass — they score via the fallback qualifier — but the contact block,
// the score, and the qualification level must be well-formed. All five answer
// slots absent is fine: a contact-only submission is valid.
func (s *Submission) Validate() error {
	c := s.Answers.Contact

	if strings.TrimSpace(c.Name) == "" {
		return invalid("answers.contact.name", "must not be empty")
	}
	if strings.TrimSpace(c.Organization) == "" {
		return invalid("answers.contact.organization", "must not be empty")
	}

	email := strings.TrimSpace(c.Email)
	if email == "" {
		return invalid("answers.contact.email", "must not be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		// The second check rejects display-name forms like "A <a@b.com>",
		// which ParseAddress accepts but which are not a bare address.
		return invalid("answers.contact.email", "not a valid email address")
	}

	if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) || s.Score < 0 {
		return invalid("score", "must be a finite non-negative number")
	}

	if !KnownTier(s.QualificationLevel) {
		return invalid("qualificationLevel",
			"must be one of critical, high, medium, low, minimal")
	}

	return nil
}

// ─── SERVER-SIDE RECOMPUTATION ────────────────────────────────────────────────

// TotalScore sums the weight of every answered slot. Absent slots contribute
// 0. Because each slot holds exactly one answer, re-selecting an option
// replaces its prior contribution rather than adding to it.
func (a AnswerSet) TotalScore() int {
	total := 0
	for _, sl := range a.slots() {
		if sl.answer == nil {
			continue
		}
		total += Weight(sl.id, sl.answer.Value, sl.answer.Qualify)
	}
	return total
}

// Recompute derives the authoritative score fields from the raw answer
// values, overwriting whatever the client sent: per-slot weights, the total,
// the qualification tier and the recommendation list. Returns the total.
//
// Client scoring is advisory/UX-only; a disagreement with the client-supplied
// total is not an error — the caller may log it, but the server value wins
// silently.
func (s *Submission) Recompute() int {
	total := 0
	for _, sl := range s.Answers.slots() {
		if sl.answer == nil {
			continue
		}
		w := Weight(sl.id, sl.answer.Value, sl.answer.Qualify)
		sl.answer.Score = w
		total += w
	}

	s.Score = float64(total)
	s.QualificationLevel = TierForScore(total)
	s.Recommendations = Recommendations(
		value(s.Answers.Q1),
		value(s.Answers.Q3),
		value(s.Answers.Q4),
	)

	if s.Version == "" {
		s.Version = "2.0"
	}

	return total
}
