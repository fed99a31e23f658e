package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brainsait/rcm-survey-api/internal/store"
)

// handleGetResponse returns one stored submission by id. The hot cache is
// checked first; a miss falls through to the durable store.
func (s *Server) handleGetResponse(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "responseID"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid response id")
		return
	}

	if raw, ok := s.cache.Get(id.String()); ok {
		respondRaw(w, http.StatusOK, raw)
		return
	}

	rec, err := s.q.GetResponse(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "response not found")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, responseJSON(rec))
}

// ─── WIRE SHAPE ───────────────────────────────────────────────────────────────

type answerView struct {
	Value string   `json:"value,omitempty"`
	Text  string   `json:"text,omitempty"`
	Score int      `json:"aiScore"`
	SAR   *float64 `json:"sar,omitempty"`
}

type responseView struct {
	ResponseID         string  `json:"responseId"`
	Timestamp          string  `json:"timestamp"`
	ClientTimestamp    string  `json:"clientTimestamp,omitempty"`
	Contact            contact `json:"contact"`

	Role      *answerView `json:"role,omitempty"`
	OrgSize   *answerView `json:"organizationSize,omitempty"`
	Challenge *answerView `json:"primaryChallenge,omitempty"`
	Impact    *answerView `json:"financialImpact,omitempty"`
	Readiness *answerView `json:"aiReadiness,omitempty"`

	Score              int             `json:"score"`
	QualificationLevel string          `json:"qualificationLevel"`
	Recommendations    json.RawMessage `json:"aiRecommendations"`
	PriorityScore      int             `json:"priorityScore"`
	Version            string          `json:"version"`
}

type contact struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Phone        string `json:"phone,omitempty"`
	Location     string `json:"location,omitempty"`
	JobTitle     string `json:"jobTitle,omitempty"`
}

// responseJSON maps a storage row back to the wire shape. The same view is
// cached at submit time, so cache hits and store reads agree.
func responseJSON(rec store.ResponseRecord) responseView {
	view := responseView{
		ResponseID:      rec.ID.String(),
		Timestamp:       rec.Timestamp.UTC().Format(time.RFC3339),
		ClientTimestamp: rec.ClientTimestamp.String,
		Contact: contact{
			Name:         rec.ContactName,
			Email:        rec.ContactEmail,
			Organization: rec.ContactOrganization,
			Phone:        rec.ContactPhone.String,
			Location:     rec.ContactLocation.String,
			JobTitle:     rec.ContactJobTitle.String,
		},
		Score:              rec.TotalScore,
		QualificationLevel: rec.QualificationLevel,
		Recommendations:    json.RawMessage(`[]`),
		PriorityScore:      rec.PriorityScore,
		Version:            rec.Version,
	}

	if rec.Recommendations.Valid {
		view.Recommendations = rec.Recommendations.RawMessage
	}

	slotView := func(val, txt string, score int) *answerView {
		if val == "" && txt == "" && score == 0 {
			return nil
		}
		return &answerView{Value: val, Text: txt, Score: score}
	}

	view.Role = slotView(rec.RoleValue.String, rec.RoleText.String, rec.RoleScore)
	view.OrgSize = slotView(rec.OrgSizeValue.String, rec.OrgSizeText.String, rec.OrgSizeScore)
	view.Challenge = slotView(rec.ChallengeValue.String, rec.ChallengeText.String, rec.ChallengeScore)
	view.Impact = slotView(rec.ImpactValue.String, rec.ImpactText.String, rec.ImpactScore)
	view.Readiness = slotView(rec.ReadinessValue.String, rec.ReadinessText.String, rec.ReadinessScore)

	if view.Impact != nil && rec.ImpactSAR.Valid {
		sar := rec.ImpactSAR.Float64
		view.Impact.SAR = &sar
	}

	return view
}
