package channels

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/logger"
)

// WebhookSettings is the live settings blob for the webhook channel
type WebhookSettings struct {
	URLs []string `json:"urls"`
	// Secret, when set, enables HMAC-SHA256 payload signing
	Secret string `json:"secret,omitempty"`
	Source string `json:"source,omitempty"`
}

// WebhookHandler POSTs the full alert to each configured endpoint. When a
// signing secret is configured the request carries an X-Webhook-Signature
// header so receivers can verify authenticity.
type WebhookHandler struct {
	log        *logger.Logger
	httpClient *http.Client
}

// NewWebhookHandler creates a new webhook channel handler
func NewWebhookHandler(log *logger.Logger, client *http.Client) *WebhookHandler {
	return &WebhookHandler{
		log:        log,
		httpClient: newHTTPClient(client),
	}
}

// Name returns the channel identifier
func (h *WebhookHandler) Name() alert.Channel {
	return alert.ChannelWebhook
}

// Deliver fans the alert out to every configured URL. Endpoints fail
// independently; the first error is reported after all were attempted.
func (h *WebhookHandler) Deliver(ctx context.Context, a *alert.Alert, settings []byte) error {
	cfg, err := decodeSettings[WebhookSettings](settings)
	if err != nil {
		return err
	}
	if len(cfg.URLs) == 0 {
		h.log.With("alert_id", a.ID).Debug("no webhook urls configured, skipping")
		return nil
	}

	source := cfg.Source
	if source == "" {
		source = "alertd"
	}
	payload := map[string]any{
		"alert":     a,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"source":    source,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	headers := map[string]string{}
	if cfg.Secret != "" {
		headers["X-Webhook-Signature"] = signPayload(body, cfg.Secret)
	}

	var firstErr error
	for _, url := range cfg.URLs {
		if err := postJSON(ctx, h.httpClient, url, json.RawMessage(body), headers); err != nil {
			h.log.WithFields(map[string]any{
				"alert_id": a.ID,
				"url":      url,
			}).ErrorWithErr(err, "webhook delivery failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
