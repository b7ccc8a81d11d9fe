package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vportela/leadcrm/internal/auth"
	"github.com/vportela/leadcrm/internal/entity"
)

type staticResolver struct {
	role entity.Role
}

func (s staticResolver) Resolve(ctx context.Context, userID string) entity.Role {
	return s.role
}

func echoAuthHandler(captured *entity.AuthContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = AuthFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func authErrorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	return body["error"].(string)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	var captured entity.AuthContext
	mw := Auth(auth.NewTokenVerifier("test-secret"), staticResolver{role: entity.RoleUser})

	rec := httptest.NewRecorder()
	mw(echoAuthHandler(&captured)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization header required", authErrorOf(t, rec))
	assert.False(t, captured.Authenticated())
}

func TestAuthRejectsNonBearerHeader(t *testing.T) {
	var captured entity.AuthContext
	mw := Auth(auth.NewTokenVerifier("test-secret"), staticResolver{role: entity.RoleUser})

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	mw(echoAuthHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization header required", authErrorOf(t, rec))
}

func TestAuthRejectsBadToken(t *testing.T) {
	var captured entity.AuthContext
	mw := Auth(auth.NewTokenVerifier("test-secret"), staticResolver{role: entity.RoleUser})

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	mw(echoAuthHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", authErrorOf(t, rec))
}

func TestAuthAttachesResolvedContext(t *testing.T) {
	verifier := auth.NewTokenVerifier("test-secret")
	token, err := verifier.Sign("user-1", "jane@example.com", time.Hour)
	require.NoError(t, err)

	var captured entity.AuthContext
	mw := Auth(verifier, staticResolver{role: entity.RoleManager})

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw(echoAuthHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, "jane@example.com", captured.Email)
	assert.Equal(t, entity.RoleManager, captured.Role)
	assert.True(t, captured.IsManager())
	assert.False(t, captured.IsAdmin())
}
