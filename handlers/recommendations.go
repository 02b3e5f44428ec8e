package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/libroteka/recommendation-service/service"
)

// RecommendationsHandler exposes the engine and trainer over HTTP. Role
// enforcement happens in middleware; by the time a request lands here it is
// already authorized.
type RecommendationsHandler struct {
	Engine  *service.Engine
	Trainer *service.Trainer
	Stats   service.StatsStore

	RetentionDays int // default window for the obsolete-pruning endpoint
}

// parseLimit reads an optional positive ?limit= parameter, using def when
// absent. A present but non-positive or unparsable value is an input error.
func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", service.ErrInvalidInput)
	}
	return n, nil
}

// Personalized handles GET /api/recommendations/{userId}.
func (h *RecommendationsHandler) Personalized(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, service.DefaultPersonalizedLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.Engine.Personalized(r.Context(), chi.URLParam(r, "userId"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Top handles GET /api/recommendations/top.
func (h *RecommendationsHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, service.DefaultTopLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	recs, err := h.Engine.TopGlobal(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

type trainResponse struct {
	Message string `json:"message"`
	RunID   string `json:"runId"`
	Updated int    `json:"updated"`
}

// Train handles POST /api/recommendations/train (admin).
func (h *RecommendationsHandler) Train(w http.ResponseWriter, r *http.Request) {
	res, err := h.Trainer.TrainGlobalModel(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trainResponse{
		Message: "Global recommendation model updated",
		RunID:   res.RunID,
		Updated: res.Updated,
	})
}

type pruneResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

// Prune handles DELETE /api/recommendations/obsolete (admin). An optional
// ?retentionDays= overrides the configured window.
func (h *RecommendationsHandler) Prune(w http.ResponseWriter, r *http.Request) {
	days := h.RetentionDays
	if raw := r.URL.Query().Get("retentionDays"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, fmt.Errorf("%w: retentionDays must be a positive integer", service.ErrInvalidInput))
			return
		}
		days = n
	}
	deleted, err := h.Trainer.PruneObsolete(r.Context(), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pruneResponse{
		Message:      "Obsolete recommendations deleted",
		DeletedCount: deleted,
	})
}

// ModelStats handles GET /api/recommendations/stats (admin).
func (h *RecommendationsHandler) ModelStats(w http.ResponseWriter, r *http.Request) {
	stats, err := service.Stats(r.Context(), h.Stats)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
