package wordpress

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/infra/queue"
)

// Client talks to the WordPress REST API with an application password.
// The site is an opaque collaborator: failures are reported to the caller
// and go no further.
type Client struct {
	HTTP *http.Client
}

func NewClient() *Client {
	return &Client{HTTP: &http.Client{Timeout: 15 * time.Second}}
}

type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// PublishSuccessStory creates a draft post announcing a won lead and returns
// the new post id.
func (c *Client) PublishSuccessStory(ctx context.Context, siteURL, username, appPassword string, payload queue.ConversionPayload) (int, error) {
	if siteURL == "" || username == "" || appPassword == "" {
		return 0, fmt.Errorf("wordpress not configured")
	}

	post := Post{
		Title: fmt.Sprintf("Success Story: %s", payload.Name),
		Content: fmt.Sprintf(
			"<h2>Client Success Story</h2><p><strong>Client:</strong> %s</p><p><strong>Email:</strong> %s</p><p><strong>Phone:</strong> %s</p>",
			payload.Name, payload.Email, payload.Phone,
		),
		Status: "draft",
	}

	body, err := json.Marshal(post)
	if err != nil {
		return 0, err
	}

	url := strings.TrimRight(siteURL, "/") + "/wp-json/wp/v2/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + appPassword))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("wordpress post failed: %d - %s", resp.StatusCode, string(raw))
	}

	var result struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return 0, err
	}
	return result.ID, nil
}

func (c *Client) Name() string { return "wordpress" }

func (c *Client) Notify(ctx context.Context, settings *entity.Settings, payload queue.ConversionPayload) error {
	if settings.WordPressSiteURL == "" {
		return nil
	}
	_, err := c.PublishSuccessStory(ctx, settings.WordPressSiteURL, settings.WordPressUsername, settings.WordPressAppPassword, payload)
	return err
}
