package entity

import "context"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"

	// RoleNone is an unauthenticated or unassigned caller.
	RoleNone Role = ""
)

type RoleRepositoryInterface interface {
	GetRole(ctx context.Context, userID string) (Role, error)
}

// AuthContext is the capability object for one authenticated request. It is
// resolved once per session and passed down instead of ad hoc boolean flags.
type AuthContext struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
}

func (a AuthContext) Authenticated() bool {
	return a.UserID != ""
}

func (a AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsManager reports manager-or-above. Nothing branches on it beyond the flag
// itself; the manager role carries no extra scoping.
func (a AuthContext) IsManager() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin
}
