package usecase

import (
	"context"

	"github.com/vportela/leadcrm/internal/entity"
)

type RoleResolverInterface interface {
	Resolve(ctx context.Context, userID string) entity.Role
}

// AccessPolicy is the single authorization rule set: admins see and mutate
// everything, everyone else is scoped to rows they own.
type AccessPolicy struct{}

// VisibleScope returns the owner filter for a list query. ok is false for an
// unauthenticated caller, whose visible set is empty without touching the
// store. An empty scope with ok=true means unrestricted (admin).
func (AccessPolicy) VisibleScope(auth entity.AuthContext) (scope string, ok bool) {
	if !auth.Authenticated() {
		return "", false
	}
	if auth.IsAdmin() {
		return "", true
	}
	return auth.UserID, true
}

func (AccessPolicy) CanCreate(auth entity.AuthContext) bool {
	return auth.Authenticated()
}

func (AccessPolicy) CanMutate(auth entity.AuthContext, lead *entity.Lead) bool {
	if !auth.Authenticated() || lead == nil {
		return false
	}
	return auth.IsAdmin() || lead.OwnerID == auth.UserID
}

// CanView follows the same rule as CanMutate: ownership scoping applies to
// reads and writes alike.
func (AccessPolicy) CanView(auth entity.AuthContext, lead *entity.Lead) bool {
	return AccessPolicy{}.CanMutate(auth, lead)
}
