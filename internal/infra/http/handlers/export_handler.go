package handlers

import (
	"net/http"
	"time"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/infra/http/middleware"
	"github.com/vportela/leadcrm/internal/usecase"
)

// ExportHandler streams the caller's visible leads as a CSV attachment.
// Query parameters: repeated status=, and range=all|thisMonth|lastMonth|thisYear.
type ExportHandler struct {
	Leads *usecase.LeadUseCase
}

func NewExportHandler(leads *usecase.LeadUseCase) *ExportHandler {
	return &ExportHandler{Leads: leads}
}

func (h *ExportHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	auth := middleware.AuthFromContext(r.Context())

	leads, err := h.Leads.List(r.Context(), auth)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	opts := usecase.ExportOptions{
		DateRange: usecase.DateRange(r.URL.Query().Get("range")),
	}
	for _, s := range r.URL.Query()["status"] {
		status := entity.LeadStatus(s)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status filter: "+s)
			return
		}
		opts.Statuses = append(opts.Statuses, status)
	}

	filename, data, err := usecase.ExportCSV(leads, opts, time.Now())
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
