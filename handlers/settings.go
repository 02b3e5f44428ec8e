package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/libroteka/recommendation-service/models"
	"github.com/libroteka/recommendation-service/service"
)

// SettingsHandler exposes the user preference operations.
type SettingsHandler struct {
	Settings *service.Settings
}

type messageResponse struct {
	Message string `json:"message"`
}

// Set handles POST /api/recommendations/user/{userId}/settings.
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json", service.ErrInvalidInput))
		return
	}
	if err := h.Settings.Set(r.Context(), chi.URLParam(r, "userId"), patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User settings saved"})
}

// Update handles PUT /api/recommendations/user/{userId}/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json", service.ErrInvalidInput))
		return
	}
	if err := h.Settings.Update(r.Context(), chi.URLParam(r, "userId"), patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User settings updated"})
}

// Notify handles PUT /api/recommendations/user/{userId}/notify?notify=.
func (h *SettingsHandler) Notify(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("notify")
	if raw != "true" && raw != "false" {
		writeError(w, fmt.Errorf("%w: notify must be true or false", service.ErrInvalidInput))
		return
	}
	notify := raw == "true"
	if err := h.Settings.SetNotify(r.Context(), chi.URLParam(r, "userId"), notify); err != nil {
		writeError(w, err)
		return
	}
	msg := "Notifications disabled"
	if notify {
		msg = "Notifications enabled"
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

type resetResponse struct {
	Message   string    `json:"message"`
	LastReset time.Time `json:"lastReset"`
}

// Reset handles DELETE /api/recommendations/user/{userId}/reset.
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	at, err := h.Settings.Reset(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{Message: "User settings reset", LastReset: at})
}
