package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/usecase"
)

// Every endpoint answers with the same envelope.
type apiResponse struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Count     *int   `json:"count,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Server    string `json:"server,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Error: msg})
}

// writeUsecaseError maps usecase failures onto the envelope: validation and
// domain rejections are 400, a missing-or-forbidden row is a generic 404,
// anything else is a 500 carrying the raw message.
func writeUsecaseError(w http.ResponseWriter, err error) {
	var verrs usecase.ValidationErrors
	if errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, verrs.Error())
		return
	}
	if usecase.IsDomainError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeError(w, http.StatusNotFound, "Lead not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func intPtr(n int) *int {
	return &n
}
