package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vportela/leadcrm/internal/auth"
	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/usecase"
)

type contextKey string

const authContextKey contextKey = "auth_context"

// Auth validates the bearer token and attaches a resolved AuthContext to the
// request. Requests without a valid token never reach the handler.
func Auth(verifier *auth.TokenVerifier, resolver usecase.RoleResolverInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, "Authorization header required")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header || token == "" {
				writeAuthError(w, "Authorization header required")
				return
			}

			claims, err := verifier.Parse(token)
			if err != nil {
				writeAuthError(w, "Invalid or expired token")
				return
			}

			authCtx := entity.AuthContext{
				UserID: claims.Subject,
				Email:  claims.Email,
				Role:   resolver.Resolve(r.Context(), claims.Subject),
			}

			ctx := context.WithValue(r.Context(), authContextKey, authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthFromContext returns the caller's AuthContext. The zero value means
// unauthenticated, which only happens on routes outside the Auth middleware.
func AuthFromContext(ctx context.Context) entity.AuthContext {
	if v, ok := ctx.Value(authContextKey).(entity.AuthContext); ok {
		return v
	}
	return entity.AuthContext{}
}

// WithAuthContext injects an AuthContext directly; test helper.
func WithAuthContext(ctx context.Context, authCtx entity.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   msg,
	})
}
