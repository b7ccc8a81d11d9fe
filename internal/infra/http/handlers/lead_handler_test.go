package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/infra/http/middleware"
	"github.com/vportela/leadcrm/internal/usecase"
)

type memLeadRepository struct {
	mu    sync.Mutex
	leads map[string]entity.Lead
}

func newMemLeadRepository() *memLeadRepository {
	return &memLeadRepository{leads: make(map[string]entity.Lead)}
}

func (r *memLeadRepository) List(ctx context.Context, ownerID string) ([]entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Lead{}
	for _, lead := range r.leads {
		if ownerID == "" || lead.OwnerID == ownerID {
			out = append(out, lead)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return &lead, nil
}

func (r *memLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads[lead.ID] = *lead
	return nil
}

func (r *memLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[lead.ID]; !ok {
		return entity.ErrLeadNotFound
	}
	r.leads[lead.ID] = *lead
	return nil
}

func (r *memLeadRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[id]; !ok {
		return entity.ErrLeadNotFound
	}
	delete(r.leads, id)
	return nil
}

type memEventRepository struct {
	mu     sync.Mutex
	events []entity.LeadEvent
}

func (r *memEventRepository) Record(ctx context.Context, ev *entity.LeadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *ev)
	return nil
}

func (r *memEventRepository) ListByLead(ctx context.Context, leadID string) ([]entity.LeadEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.LeadEvent{}
	for _, ev := range r.events {
		if ev.LeadID == leadID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func newLeadTestHandler(t *testing.T) (*LeadHandler, *memLeadRepository) {
	t.Helper()
	repo := newMemLeadRepository()
	uc := usecase.NewLeadUseCase(repo, &memEventRepository{}, nil, nil, zap.NewNop())
	return NewLeadHandler(uc), repo
}

func authedRequest(method, target string, body []byte, auth entity.AuthContext) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(middleware.WithAuthContext(req.Context(), auth))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func seedLead(repo *memLeadRepository, id, ownerID string, status entity.LeadStatus) entity.Lead {
	lead := entity.Lead{
		ID:         id,
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "11999990000",
		Status:     status,
		AssignedTo: "Maria",
		OwnerID:    ownerID,
		CreatedAt:  time.Now().Add(-time.Hour),
		UpdatedAt:  time.Now().Add(-time.Hour),
	}
	repo.Create(context.Background(), &lead)
	return lead
}

func TestLeadHandlerCreateAppliesDefaultsAndOwner(t *testing.T) {
	handler, _ := newLeadTestHandler(t)
	caller := entity.AuthContext{UserID: "user-1", Role: entity.RoleUser}

	body := []byte(`{"name":"Jane Doe","email":"jane@example.com","phone":"11999990000"}`)
	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodPost, "/leads", body, caller))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, true, resp["success"])

	data := resp["data"].(map[string]any)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "New", data["status"])
	assert.Equal(t, "Unassigned", data["assigned_to"])
	assert.Equal(t, "user-1", data["owner_id"])
}

func TestLeadHandlerCreateMissingFields(t *testing.T) {
	handler, _ := newLeadTestHandler(t)
	caller := entity.AuthContext{UserID: "user-1", Role: entity.RoleUser}

	body := []byte(`{"name":"Jane Doe"}`)
	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodPost, "/leads", body, caller))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Missing required fields: name, email, phone", resp["error"])
}

func TestLeadHandlerCreateInvalidJSON(t *testing.T) {
	handler, _ := newLeadTestHandler(t)
	caller := entity.AuthContext{UserID: "user-1", Role: entity.RoleUser}

	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodPost, "/leads", []byte(`{`), caller))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON", decodeResponse(t, rec)["error"])
}

func TestLeadHandlerGetHidesForeignLead(t *testing.T) {
	handler, repo := newLeadTestHandler(t)
	seedLead(repo, "l1", "owner-1", entity.StatusNew)

	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodGet, "/leads?id=l1", nil,
		entity.AuthContext{UserID: "other", Role: entity.RoleUser}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Lead not found", decodeResponse(t, rec)["error"])
}

func TestLeadHandlerGetAdminSeesAnyLead(t *testing.T) {
	handler, repo := newLeadTestHandler(t)
	seedLead(repo, "l1", "owner-1", entity.StatusNew)

	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodGet, "/leads?id=l1", nil,
		entity.AuthContext{UserID: "admin-1", Role: entity.RoleAdmin}))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec)["data"].(map[string]any)
	assert.Equal(t, "l1", data["id"])
}

func TestLeadHandlerListScopesToOwner(t *testing.T) {
	handler, repo := newLeadTestHandler(t)
	seedLead(repo, "l1", "owner-1", entity.StatusNew)
	seedLead(repo, "l2", "owner-2", entity.StatusNew)

	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodGet, "/leads", nil,
		entity.AuthContext{UserID: "owner-1", Role: entity.RoleUser}))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, float64(1), resp["count"])
	leads := resp["data"].([]any)
	require.Len(t, leads, 1)
	assert.Equal(t, "l1", leads[0].(map[string]any)["id"])
}

func TestLeadHandlerUpdatePatchesOnlyProvidedFields(t *testing.T) {
	handler, repo := newLeadTestHandler(t)
	seeded := seedLead(repo, "l1", "owner-1", entity.StatusNew)

	body := []byte(`{"status":"Won"}`)
	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodPut, "/leads?id=l1", body,
		entity.AuthContext{UserID: "owner-1", Role: entity.RoleUser}))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Won", data["status"])
	assert.Equal(t, seeded.Name, data["name"])
	assert.Equal(t, seeded.Email, data["email"])

	stored, err := repo.FindByID(context.Background(), "l1")
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.After(seeded.UpdatedAt))
	assert.Equal(t, seeded.CreatedAt.Unix(), stored.CreatedAt.Unix())
}

func TestLeadHandlerUpdateRequiresID(t *testing.T) {
	handler, _ := newLeadTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodPut, "/leads", []byte(`{}`),
		entity.AuthContext{UserID: "owner-1", Role: entity.RoleUser}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Lead ID is required", decodeResponse(t, rec)["error"])
}

func TestLeadHandlerUpdateRejectsInvalidPatch(t *testing.T) {
	handler, repo := newLeadTestHandler(t)
	seedLead(repo, "l1", "owner-1", entity.StatusNew)

	body := []byte(`{"email":"not-an-email"}`)
	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodPut, "/leads?id=l1", body,
		entity.AuthContext{UserID: "owner-1", Role: entity.RoleUser}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stored, err := repo.FindByID(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", stored.Email)
}

func TestLeadHandlerDelete(t *testing.T) {
	handler, repo := newLeadTestHandler(t)
	seedLead(repo, "l1", "owner-1", entity.StatusNew)

	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodDelete, "/leads?id=l1", nil,
		entity.AuthContext{UserID: "owner-1", Role: entity.RoleUser}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lead deleted successfully", decodeResponse(t, rec)["message"])

	_, err := repo.FindByID(context.Background(), "l1")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestLeadHandlerMethodNotAllowed(t *testing.T) {
	handler, _ := newLeadTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodPatch, "/leads", nil,
		entity.AuthContext{UserID: "owner-1", Role: entity.RoleUser}))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method PATCH not allowed", decodeResponse(t, rec)["error"])
}

func TestLeadHandlerHistory(t *testing.T) {
	handler, _ := newLeadTestHandler(t)
	caller := entity.AuthContext{UserID: "owner-1", Role: entity.RoleUser}

	body := []byte(`{"name":"Jane Doe","email":"jane@example.com","phone":"11999990000"}`)
	rec := httptest.NewRecorder()
	handler.Handle(rec, authedRequest(http.MethodPost, "/leads", body, caller))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeResponse(t, rec)["data"].(map[string]any)["id"].(string)

	rec = httptest.NewRecorder()
	handler.HandleHistory(rec, authedRequest(http.MethodGet, "/leads/history?id="+id, nil, caller))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, float64(1), resp["count"])
	events := resp["data"].([]any)
	require.Len(t, events, 1)
	assert.Equal(t, "created", events[0].(map[string]any)["event"])
}
