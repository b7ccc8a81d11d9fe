package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vportela/leadcrm/internal/infra/http/middleware"
)

// WebhookHandler relays CRM events to an external URL. Delivery is
// fire-and-forget: the response says "queued" and never reflects the
// downstream outcome.
type WebhookHandler struct {
	Client *http.Client
	Logger *zap.Logger
}

func NewWebhookHandler(logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		Client: &http.Client{Timeout: 10 * time.Second},
		Logger: logger,
	}
}

type relayRequest struct {
	WebhookURL string          `json:"webhook_url"`
	EventType  string          `json:"event_type"`
	Data       json.RawMessage `json:"data"`
}

type relayPayload struct {
	Event     string          `json:"event"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Source    string          `json:"source"`
	UserID    string          `json:"user_id,omitempty"`
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req relayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.WebhookURL == "" {
		writeError(w, http.StatusBadRequest, "webhook_url is required")
		return
	}

	if req.EventType == "" {
		req.EventType = "lead_created"
	}

	auth := middleware.AuthFromContext(r.Context())
	now := time.Now().UTC().Format(time.RFC3339)
	payload := relayPayload{
		Event:     req.EventType,
		Timestamp: now,
		Data:      req.Data,
		Source:    "CRM System",
		UserID:    auth.UserID,
	}

	go h.deliver(req.WebhookURL, payload)

	writeJSON(w, http.StatusOK, apiResponse{
		Success:   true,
		Message:   "Webhook queued for delivery",
		EventType: req.EventType,
		Timestamp: now,
	})
}

// HandleTest is a reachability probe for integration setup screens.
func (h *WebhookHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiResponse{
		Success:   true,
		Message:   "Webhook endpoint is working",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Server:    "leadcrm",
	})
}

func (h *WebhookHandler) deliver(url string, payload relayPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.Logger.Error("webhook payload marshal failed", zap.Error(err))
		middleware.RecordWebhookDelivery("error")
		return
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		h.Logger.Error("webhook request build failed", zap.Error(err))
		middleware.RecordWebhookDelivery("error")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "CRM-Webhook/1.0")

	resp, err := h.Client.Do(req)
	if err != nil {
		h.Logger.Warn("webhook delivery failed", zap.String("url", url), zap.Error(err))
		middleware.RecordWebhookDelivery("error")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		h.Logger.Warn("webhook rejected downstream",
			zap.String("url", url), zap.Int("status", resp.StatusCode))
		middleware.RecordWebhookDelivery("rejected")
		return
	}
	middleware.RecordWebhookDelivery("delivered")
}
