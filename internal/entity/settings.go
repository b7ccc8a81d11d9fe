package entity

import (
	"context"
	"time"
)

// Settings is the workspace configuration consumed by the conversion worker
// and surfaced in the settings endpoints. Single row, admin-editable.
type Settings struct {
	WebhookURL           string    `json:"webhook_url"`
	SheetsWebhookURL     string    `json:"sheets_webhook_url"`
	WordPressSiteURL     string    `json:"wordpress_site_url"`
	WordPressUsername    string    `json:"wordpress_username"`
	WordPressAppPassword string    `json:"wordpress_app_password"`
	NotificationEmail    string    `json:"notification_email"`
	TeamMembers          []string  `json:"team_members"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type SettingsRepositoryInterface interface {
	Get(ctx context.Context) (*Settings, error)

	Save(ctx context.Context, s *Settings) error
}
