package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/brainsait/rcm-survey-api/internal/ai"
	"github.com/brainsait/rcm-survey-api/internal/email"
	"github.com/brainsait/rcm-survey-api/internal/store"
	"github.com/brainsait/rcm-survey-api/internal/survey"
)

// submitResponse is the wire shape returned on a successful submission.
type submitResponse struct {
	Success            bool        `json:"success"`
	ResponseID         string      `json:"responseId"`
	QualificationLevel survey.Tier `json:"qualificationLevel"`
	Score              int         `json:"score"`
	AIInsights         aiInsights  `json:"aiInsights"`
	Timestamp          string      `json:"timestamp"`
}

type aiInsights struct {
	Insights        []string `json:"insights"`
	Trends          []string `json:"trends"`
	Recommendations []string `json:"recommendations"`
}

// handleSubmit runs the full submission pipeline:
//
//  1. decode and validate the payload
//  2. assign the server-side id and timestamp
//  3. recompute score, tier and recommendations (client values are advisory)
//  4. persist — this is the only fatal step after validation
//  5. cache a hot copy of the stored record
//  6. AI insight enrichment, bounded by AdvisoryTimeout
//  7. qualified-lead alert email for critical/high tiers
//  8. audit trail append
//
// Steps 5-8 are best-effort: failures are logged and the respondent still
// gets a 201.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub survey.Submission
	if !decode(w, r, &sub) {
		return
	}

	if err := sub.Validate(); err != nil {
		var verr *survey.ValidationError
		if errors.As(err, &verr) {
			respond(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "validation failed",
				"details": map[string]string{verr.Field: verr.Reason},
			})
			return
		}
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.New()
	receivedAt := time.Now().UTC()

	clientScore := sub.Score
	total := sub.Recompute()
	if clientScore != float64(total) {
		s.logger.Debug("submit: client score disagreed, server value wins",
			"response_id", id,
			"client_score", clientScore,
			"server_score", total,
		)
	}

	rec, err := buildRecord(id, receivedAt, &sub)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	if err := s.q.InsertResponse(r.Context(), rec); err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	s.cacheRecord(id, rec)

	insights := s.enrich(r.Context(), id, &sub)

	if sub.QualificationLevel == survey.TierCritical || sub.QualificationLevel == survey.TierHigh {
		s.sendLeadAlert(r.Context(), &sub, total)
	}

	if err := s.audit.Append(r.Context(), store.NewAuditEntry("survey_submit", "create", map[string]any{
		"responseId":         id.String(),
		"organization":       sub.Answers.Contact.Organization,
		"score":              total,
		"qualificationLevel": sub.QualificationLevel,
	})); err != nil {
		s.logger.Error("submit: audit append failed", "error", err, "response_id", id)
	}

	respond(w, http.StatusCreated, submitResponse{
		Success:            true,
		ResponseID:         id.String(),
		QualificationLevel: sub.QualificationLevel,
		Score:              total,
		AIInsights: aiInsights{
			Insights:        emptySlice(insights.Insights),
			Trends:          emptySlice(insights.Trends),
			Recommendations: emptySlice(sub.Recommendations),
		},
		Timestamp: receivedAt.Format(time.RFC3339),
	})
}

// cacheRecord stores a hot JSON copy of the persisted record under the
// response id. Best-effort — the durable row is authoritative.
func (s *Server) cacheRecord(id uuid.UUID, rec store.ResponseRecord) {
	raw, err := json.Marshal(responseJSON(rec))
	if err != nil {
		s.logger.Error("submit: marshal cache copy failed", "error", err, "response_id", id)
		return
	}
	s.cache.Put(id.String(), raw, s.cfg.SubmissionCacheTTL)
}

// enrich calls the insighter with a bounded deadline. Any failure degrades to
// an empty result.
func (s *Server) enrich(ctx context.Context, id uuid.UUID, sub *survey.Submission) ai.InsightResult {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AdvisoryTimeout)
	defer cancel()

	var sar float64
	if q4 := sub.Answers.Q4; q4 != nil && q4.SAR != nil {
		sar = *q4.SAR
	}

	result, err := s.insighter.Summarize(ctx, ai.SubmissionContext{
		Role:         answerValue(sub.Answers.Q1),
		Organization: answerValue(sub.Answers.Q2),
		Challenge:    answerValue(sub.Answers.Q3),
		FinancialSAR: sar,
		Readiness:    answerValue(sub.Answers.Q5),
		Score:        int(sub.Score),
		Tier:         string(sub.QualificationLevel),
	})
	if err != nil {
		s.logger.Warn("submit: insight enrichment failed", "error", err, "response_id", id)
		return ai.InsightResult{}
	}
	return result
}

// sendLeadAlert notifies the sales inbox about a critical/high lead.
// Best-effort; skipped entirely when no inbox is configured.
func (s *Server) sendLeadAlert(ctx context.Context, sub *survey.Submission, total int) {
	if s.cfg.LeadAlertAddr == "" {
		return
	}

	c := sub.Answers.Contact
	p := email.LeadAlertParams{
		To:              s.cfg.LeadAlertAddr,
		Name:            c.Name,
		Email:           c.Email,
		Organization:    c.Organization,
		Phone:           c.Phone,
		Location:        c.Location,
		JobTitle:        c.JobTitle,
		RoleText:        answerText(sub.Answers.Q1),
		OrgSizeText:     answerText(sub.Answers.Q2),
		ChallengeText:   answerText(sub.Answers.Q3),
		ImpactText:      answerText(sub.Answers.Q4),
		ReadinessText:   answerText(sub.Answers.Q5),
		Score:           total,
		MaxScore:        survey.MaxScore,
		Tier:            string(sub.QualificationLevel),
		Recommendations: sub.Recommendations,
	}
	if q4 := sub.Answers.Q4; q4 != nil && q4.SAR != nil {
		p.ImpactSAR = *q4.SAR
	}

	if err := s.mailer.SendLeadAlert(ctx, p); err != nil {
		s.logger.Error("submit: lead alert failed",
			"error", err,
			"organization", c.Organization,
			"tier", sub.QualificationLevel,
		)
	}
}

// ─── RECORD MAPPING ───────────────────────────────────────────────────────────

// buildRecord flattens a recomputed submission into the storage row.
func buildRecord(id uuid.UUID, receivedAt time.Time, sub *survey.Submission) (store.ResponseRecord, error) {
	recs, err := json.Marshal(emptySlice(sub.Recommendations))
	if err != nil {
		return store.ResponseRecord{}, err
	}

	c := sub.Answers.Contact
	rec := store.ResponseRecord{
		ID:              id,
		Timestamp:       receivedAt,
		ClientTimestamp: nullStr(sub.Timestamp),

		ContactName:         c.Name,
		ContactEmail:        c.Email,
		ContactOrganization: c.Organization,
		ContactPhone:        nullStr(c.Phone),
		ContactLocation:     nullStr(c.Location),
		ContactJobTitle:     nullStr(c.JobTitle),

		TotalScore:         int(sub.Score),
		QualificationLevel: string(sub.QualificationLevel),
		Recommendations:    pqtype.NullRawMessage{RawMessage: recs, Valid: true},
		PriorityScore:      survey.PriorityScore(int(sub.Score), sub.QualificationLevel),

		Version: sub.Version,
	}

	setSlot := func(a *survey.Answer, val, txt *sql.NullString, score *int) {
		if a == nil {
			return
		}
		*val = nullStr(a.Value)
		*txt = nullStr(a.Text)
		*score = a.Score
	}

	setSlot(sub.Answers.Q1, &rec.RoleValue, &rec.RoleText, &rec.RoleScore)
	setSlot(sub.Answers.Q2, &rec.OrgSizeValue, &rec.OrgSizeText, &rec.OrgSizeScore)
	setSlot(sub.Answers.Q3, &rec.ChallengeValue, &rec.ChallengeText, &rec.ChallengeScore)
	setSlot(sub.Answers.Q4, &rec.ImpactValue, &rec.ImpactText, &rec.ImpactScore)
	setSlot(sub.Answers.Q5, &rec.ReadinessValue, &rec.ReadinessText, &rec.ReadinessScore)

	if q4 := sub.Answers.Q4; q4 != nil && q4.SAR != nil {
		rec.ImpactSAR = sql.NullFloat64{Float64: *q4.SAR, Valid: true}
	}

	return rec, nil
}

// ─── SMALL HELPERS ────────────────────────────────────────────────────────────

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func answerValue(a *survey.Answer) string {
	if a == nil {
		return ""
	}
	return a.Value
}

func answerText(a *survey.Answer) string {
	if a == nil {
		return ""
	}
	return a.Text
}

// emptySlice keeps empty lists as [] in JSON rather than null.
func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
