package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brainsait/rcm-survey-api/internal/store"
)

// handleAnalytics serves the cached dashboard snapshot.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	raw, err := s.agg.Dashboard(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	if err := s.audit.Append(r.Context(), store.NewAuditEntry("data_access", "analytics_view", nil)); err != nil {
		s.logger.Error("analytics: audit append failed", "error", err)
	}

	respondRaw(w, http.StatusOK, raw)
}

// handleRecommendations serves benchmark data for one organization size.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	orgType := chi.URLParam(r, "orgType")
	if orgType == "" {
		respondErr(w, http.StatusBadRequest, "missing organization type")
		return
	}

	raw, err := s.agg.Recommendations(r.Context(), orgType)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	respondRaw(w, http.StatusOK, raw)
}
