package channels

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/logger"
)

// SlackSettings is the live settings blob for the chat webhook channel
type SlackSettings struct {
	WebhookURL string `json:"webhook_url"`
	Channel    string `json:"channel,omitempty"`
	Username   string `json:"username,omitempty"`
	IconEmoji  string `json:"icon_emoji,omitempty"`
}

// SlackHandler posts alerts to a Slack-compatible incoming webhook as a
// color-coded attachment card
type SlackHandler struct {
	log        *logger.Logger
	httpClient *http.Client
}

// NewSlackHandler creates a new Slack channel handler
func NewSlackHandler(log *logger.Logger, client *http.Client) *SlackHandler {
	return &SlackHandler{log: log, httpClient: newHTTPClient(client)}
}

// Name returns the channel identifier
func (h *SlackHandler) Name() alert.Channel {
	return alert.ChannelSlack
}

// Deliver maps the alert into a Slack attachment and posts it to the
// configured webhook. Missing webhook configuration is a logged no-op.
func (h *SlackHandler) Deliver(ctx context.Context, a *alert.Alert, settings []byte) error {
	cfg, err := decodeSettings[SlackSettings](settings)
	if err != nil {
		return err
	}
	if cfg.WebhookURL == "" {
		h.log.With("alert_id", a.ID).Debug("slack webhook URL not configured, skipping")
		return nil
	}

	payload := h.buildMessage(a, cfg)
	if err := postJSON(ctx, h.httpClient, cfg.WebhookURL, payload, nil); err != nil {
		return fmt.Errorf("slack delivery: %w", err)
	}

	h.log.WithFields(map[string]any{
		"alert_id": a.ID,
		"priority": a.Priority,
	}).Debug("slack notification sent")
	return nil
}

func (h *SlackHandler) buildMessage(a *alert.Alert, cfg SlackSettings) map[string]any {
	attachment := map[string]any{
		"color":  priorityColor(a.Priority),
		"title":  a.Title,
		"text":   a.Message,
		"footer": "alertd",
		"ts":     a.Timestamp.Unix(),
		"fields": []map[string]any{
			{"title": "Type", "value": string(a.Type), "short": true},
			{"title": "Priority", "value": string(a.Priority), "short": true},
		},
	}

	if len(a.Actions) > 0 {
		actions := make([]map[string]any, 0, len(a.Actions))
		for _, act := range a.Actions {
			btn := map[string]any{
				"type": "button",
				"text": act.Label,
			}
			if act.URL != "" {
				btn["url"] = act.URL
			}
			if act.RequiresConfirmation {
				btn["confirm"] = map[string]any{
					"title": "Are you sure?",
					"text":  act.Label,
				}
			}
			actions = append(actions, btn)
		}
		attachment["actions"] = actions
	}

	msg := map[string]any{
		"attachments": []map[string]any{attachment},
	}
	if cfg.Channel != "" {
		msg["channel"] = cfg.Channel
	}
	if cfg.Username != "" {
		msg["username"] = cfg.Username
	}
	if cfg.IconEmoji != "" {
		msg["icon_emoji"] = cfg.IconEmoji
	}
	return msg
}

func priorityColor(p alert.Priority) string {
	switch p {
	case alert.PriorityCritical:
		return "#ff0000"
	case alert.PriorityHigh:
		return "#ff8c00"
	case alert.PriorityMedium:
		return "#ffcc00"
	case alert.PriorityLow:
		return "#36a64f"
	default:
		return "#439fe0"
	}
}
