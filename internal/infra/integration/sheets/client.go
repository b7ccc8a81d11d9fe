package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/infra/queue"
)

// Client posts lead backups to a Google Sheets webhook (an Apps Script web
// app URL). The sheet side is opaque; only transport errors surface.
type Client struct {
	HTTP  *http.Client
	Leads entity.LeadRepositoryInterface
}

func NewClient(leads entity.LeadRepositoryInterface) *Client {
	return &Client{
		HTTP:  &http.Client{Timeout: 15 * time.Second},
		Leads: leads,
	}
}

type backupPayload struct {
	Timestamp  string        `json:"timestamp"`
	Leads      []entity.Lead `json:"leads"`
	BackupType string        `json:"backup_type"`
}

// Backup ships the full lead set to the configured webhook.
func (c *Client) Backup(ctx context.Context, webhookURL string, leads []entity.Lead) error {
	if webhookURL == "" {
		return fmt.Errorf("sheets webhook not configured")
	}

	body, err := json.Marshal(backupPayload{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Leads:      leads,
		BackupType: "full_sync",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sheets backup failed: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) Name() string { return "sheets" }

// Notify re-syncs the whole lead set on each conversion, mirroring the
// full_sync snapshot the sheet expects.
func (c *Client) Notify(ctx context.Context, settings *entity.Settings, _ queue.ConversionPayload) error {
	if settings.SheetsWebhookURL == "" {
		return nil
	}
	leads, err := c.Leads.List(ctx, "")
	if err != nil {
		return err
	}
	return c.Backup(ctx, settings.SheetsWebhookURL, leads)
}
