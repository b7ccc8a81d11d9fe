package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/infra/http/middleware"
)

// SettingsHandler exposes the workspace configuration. Any authenticated
// caller may read it; only admins may change it.
type SettingsHandler struct {
	Repo entity.SettingsRepositoryInterface
}

func NewSettingsHandler(repo entity.SettingsRepositoryInterface) *SettingsHandler {
	return &SettingsHandler{Repo: repo}
}

func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Repo.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: settings})
}

func (h *SettingsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	auth := middleware.AuthFromContext(r.Context())
	if !auth.IsAdmin() {
		writeError(w, http.StatusForbidden, "Admin role required")
		return
	}

	var settings entity.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.Repo.Save(r.Context(), &settings); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: settings})
}
