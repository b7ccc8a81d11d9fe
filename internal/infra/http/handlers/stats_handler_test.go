package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/usecase"
)

func newStatsTestHandler(t *testing.T) (*StatsHandler, *memLeadRepository) {
	t.Helper()
	repo := newMemLeadRepository()
	uc := usecase.NewLeadUseCase(repo, &memEventRepository{}, nil, nil, zap.NewNop())
	return NewStatsHandler(uc), repo
}

func TestStatsOverview(t *testing.T) {
	handler, repo := newStatsTestHandler(t)
	seedLead(repo, "l1", "owner-1", entity.StatusWon)
	seedLead(repo, "l2", "owner-1", entity.StatusLost)
	seedLead(repo, "l3", "owner-1", entity.StatusNew)
	seedLead(repo, "l4", "owner-1", entity.StatusContacted)

	rec := httptest.NewRecorder()
	handler.HandleOverview(rec, authedRequest(http.MethodGet, "/stats", nil,
		entity.AuthContext{UserID: "owner-1", Role: entity.RoleUser}))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(4), data["total"])
	assert.Equal(t, float64(1), data["won"])
	assert.Equal(t, float64(1), data["lost"])
	assert.Equal(t, float64(25), data["conversion_rate"])
}

func TestStatsOverviewScopedToCaller(t *testing.T) {
	handler, repo := newStatsTestHandler(t)
	seedLead(repo, "l1", "owner-1", entity.StatusWon)
	seedLead(repo, "l2", "owner-2", entity.StatusLost)

	rec := httptest.NewRecorder()
	handler.HandleOverview(rec, authedRequest(http.MethodGet, "/stats", nil,
		entity.AuthContext{UserID: "owner-1", Role: entity.RoleUser}))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total"], "foreign rows never enter the caller's stats")
	assert.Equal(t, float64(100), data["conversion_rate"])
}

func TestStatsLeaderboardRanksByRate(t *testing.T) {
	handler, repo := newStatsTestHandler(t)
	seedAssigned := func(id, assignee string, status entity.LeadStatus) {
		lead := seedLead(repo, id, "admin-1", status)
		lead.AssignedTo = assignee
		require.NoError(t, repo.Update(context.Background(), &lead))
	}
	seedAssigned("a1", "Alice", entity.StatusWon)
	seedAssigned("a2", "Alice", entity.StatusWon)
	seedAssigned("a3", "Alice", entity.StatusLost)
	seedAssigned("a4", "Alice", entity.StatusNew)
	seedAssigned("b1", "Bob", entity.StatusLost)
	seedAssigned("b2", "Bob", entity.StatusContacted)

	rec := httptest.NewRecorder()
	handler.HandleLeaderboard(rec, authedRequest(http.MethodGet, "/stats/leaderboard", nil,
		entity.AuthContext{UserID: "admin-1", Role: entity.RoleAdmin}))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec)["data"].(map[string]any)
	members := data["members"].([]any)
	require.Len(t, members, 2)

	first := members[0].(map[string]any)
	assert.Equal(t, "Alice", first["name"])
	assert.Equal(t, float64(50), first["conversion_rate"])
	assert.Equal(t, float64(1), first["rank"])

	second := members[1].(map[string]any)
	assert.Equal(t, "Bob", second["name"])
	assert.Equal(t, float64(0), second["conversion_rate"])
	assert.Equal(t, float64(2), second["rank"])
	assert.Equal(t, float64(25), data["team_average"])
}
