package handlers

import (
	"net/http"
	"time"

	"github.com/vportela/leadcrm/internal/infra/http/middleware"
	"github.com/vportela/leadcrm/internal/usecase"
)

// StatsHandler serves pipeline metrics over the caller's visible lead set,
// so a non-admin only ever sees rates computed from their own rows.
type StatsHandler struct {
	Leads *usecase.LeadUseCase
}

func NewStatsHandler(leads *usecase.LeadUseCase) *StatsHandler {
	return &StatsHandler{Leads: leads}
}

type overviewResponse struct {
	usecase.LeadStats
	RecentLeads int `json:"recent_leads"`
	RecentWins  int `json:"recent_wins"`
}

func (h *StatsHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	auth := middleware.AuthFromContext(r.Context())

	leads, err := h.Leads.List(r.Context(), auth)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	created, wins := usecase.RecentActivity(leads, time.Now())
	resp := overviewResponse{
		LeadStats:   usecase.ComputeStats(leads),
		RecentLeads: created,
		RecentWins:  wins,
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: resp})
}

type leaderboardResponse struct {
	Members     []usecase.MemberPerformance `json:"members"`
	TeamAverage float64                     `json:"team_average"`
}

func (h *StatsHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	auth := middleware.AuthFromContext(r.Context())

	leads, err := h.Leads.List(r.Context(), auth)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	board := usecase.TeamLeaderboard(leads)
	resp := leaderboardResponse{
		Members:     board,
		TeamAverage: usecase.TeamAverage(board),
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: resp})
}
