package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/vportela/leadcrm/internal/entity"
)

type SettingsRepository struct {
	DB *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

// The settings table holds exactly one row, keyed by a fixed id.
const settingsRowID = 1

func (r *SettingsRepository) Get(ctx context.Context) (*entity.Settings, error) {
	query := `
		SELECT webhook_url, sheets_webhook_url, wordpress_site_url,
		       wordpress_username, wordpress_app_password,
		       notification_email, team_members, updated_at
		FROM settings WHERE id = $1
	`

	var s entity.Settings
	var members []byte
	err := r.DB.QueryRowContext(ctx, query, settingsRowID).Scan(
		&s.WebhookURL,
		&s.SheetsWebhookURL,
		&s.WordPressSiteURL,
		&s.WordPressUsername,
		&s.WordPressAppPassword,
		&s.NotificationEmail,
		&members,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// No row yet: defaults.
		return &entity.Settings{TeamMembers: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}

	s.TeamMembers = decodeMembers(members)
	return &s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *entity.Settings) error {
	query := `
		INSERT INTO settings (id, webhook_url, sheets_webhook_url, wordpress_site_url,
		                      wordpress_username, wordpress_app_password,
		                      notification_email, team_members, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET
			webhook_url = EXCLUDED.webhook_url,
			sheets_webhook_url = EXCLUDED.sheets_webhook_url,
			wordpress_site_url = EXCLUDED.wordpress_site_url,
			wordpress_username = EXCLUDED.wordpress_username,
			wordpress_app_password = EXCLUDED.wordpress_app_password,
			notification_email = EXCLUDED.notification_email,
			team_members = EXCLUDED.team_members,
			updated_at = EXCLUDED.updated_at
	`

	s.UpdatedAt = time.Now()
	_, err := r.DB.ExecContext(ctx, query,
		settingsRowID,
		s.WebhookURL,
		s.SheetsWebhookURL,
		s.WordPressSiteURL,
		s.WordPressUsername,
		s.WordPressAppPassword,
		s.NotificationEmail,
		encodeMembers(s.TeamMembers),
		s.UpdatedAt,
	)
	return err
}

// team_members is stored as a jsonb column.
func encodeMembers(members []string) []byte {
	if members == nil {
		members = []string{}
	}
	b, _ := json.Marshal(members)
	return b
}

func decodeMembers(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var members []string
	if err := json.Unmarshal(raw, &members); err != nil {
		return []string{}
	}
	return members
}
