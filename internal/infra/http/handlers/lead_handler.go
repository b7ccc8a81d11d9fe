package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/infra/http/middleware"
	"github.com/vportela/leadcrm/internal/usecase"
)

// LeadHandler is the CRUD endpoint. One path, verbs dispatched by method,
// row selection via the id query parameter.
type LeadHandler struct {
	Leads *usecase.LeadUseCase
}

func NewLeadHandler(leads *usecase.LeadUseCase) *LeadHandler {
	return &LeadHandler{Leads: leads}
}

func (h *LeadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodPut:
		h.handleUpdate(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed", r.Method))
	}
}

func (h *LeadHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	auth := middleware.AuthFromContext(r.Context())

	if id := r.URL.Query().Get("id"); id != "" {
		lead, err := h.Leads.Get(r.Context(), auth, id)
		if err != nil {
			writeUsecaseError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: lead})
		return
	}

	leads, err := h.Leads.List(r.Context(), auth)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: leads, Count: intPtr(len(leads))})
}

func (h *LeadHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	auth := middleware.AuthFromContext(r.Context())

	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if input.Name == "" || input.Email == "" || input.Phone == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: name, email, phone")
		return
	}

	lead, err := h.Leads.Create(r.Context(), auth, input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	middleware.RecordLeadCreated()
	if lead.Status == entity.StatusWon {
		middleware.RecordLeadWon()
	}
	writeJSON(w, http.StatusCreated, apiResponse{Success: true, Data: lead})
}

func (h *LeadHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	auth := middleware.AuthFromContext(r.Context())

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Lead ID is required")
		return
	}

	var patch usecase.LeadPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	lead, err := h.Leads.Update(r.Context(), auth, id, patch)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	if patch.Status != nil && lead.Status == entity.StatusWon {
		middleware.RecordLeadWon()
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: lead})
}

func (h *LeadHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	auth := middleware.AuthFromContext(r.Context())

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Lead ID is required")
		return
	}

	if err := h.Leads.Delete(r.Context(), auth, id); err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Lead deleted successfully"})
}

// HandleHistory serves the audit trail for one lead.
func (h *LeadHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	auth := middleware.AuthFromContext(r.Context())

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Lead ID is required")
		return
	}

	events, err := h.Leads.History(r.Context(), auth, id)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: events, Count: intPtr(len(events))})
}
