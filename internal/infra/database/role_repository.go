package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vportela/leadcrm/internal/entity"
)

type RoleRepository struct {
	DB *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{DB: db}
}

// GetRole returns the single role assigned to a user. A user without a row
// has no role; the resolver decides the fallback.
func (r *RoleRepository) GetRole(ctx context.Context, userID string) (entity.Role, error) {
	query := `SELECT role FROM user_roles WHERE user_id = $1`

	var role string
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.RoleNone, nil
	}
	if err != nil {
		return entity.RoleNone, err
	}
	return entity.Role(role), nil
}
