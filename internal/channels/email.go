package channels

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/logger"
)

// EmailSettings is the live settings blob for the email channel
type EmailSettings struct {
	EndpointURL string   `json:"endpoint_url"`
	Recipients  []string `json:"recipients"`
	Template    string   `json:"template,omitempty"`
}

// EmailHandler forwards alerts to the internal email gateway endpoint
type EmailHandler struct {
	log        *logger.Logger
	httpClient *http.Client
}

// NewEmailHandler creates a new email channel handler
func NewEmailHandler(log *logger.Logger, client *http.Client) *EmailHandler {
	return &EmailHandler{log: log, httpClient: newHTTPClient(client)}
}

// Name returns the channel identifier
func (h *EmailHandler) Name() alert.Channel {
	return alert.ChannelEmail
}

// Deliver posts {to, subject, template, data} to the email gateway. Missing
// endpoint or recipients is a logged no-op.
func (h *EmailHandler) Deliver(ctx context.Context, a *alert.Alert, settings []byte) error {
	cfg, err := decodeSettings[EmailSettings](settings)
	if err != nil {
		return err
	}
	if cfg.EndpointURL == "" || len(cfg.Recipients) == 0 {
		h.log.With("alert_id", a.ID).Debug("email endpoint or recipients not configured, skipping")
		return nil
	}

	template := cfg.Template
	if template == "" {
		template = "alert"
	}

	payload := map[string]any{
		"to":       cfg.Recipients,
		"subject":  fmt.Sprintf("[%s] %s", a.Priority, a.Title),
		"template": template,
		"data": map[string]any{
			"id":        a.ID,
			"type":      a.Type,
			"priority":  a.Priority,
			"title":     a.Title,
			"message":   a.Message,
			"timestamp": a.Timestamp,
			"metadata":  a.Metadata,
			"actions":   a.Actions,
		},
	}

	if err := postJSON(ctx, h.httpClient, cfg.EndpointURL, payload, nil); err != nil {
		return fmt.Errorf("email delivery: %w", err)
	}

	h.log.WithFields(map[string]any{
		"alert_id":   a.ID,
		"recipients": len(cfg.Recipients),
	}).Debug("email notification sent")
	return nil
}
