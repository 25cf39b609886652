package channels

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/logger"
)

// SMSSettings is the live settings blob for the SMS channel
type SMSSettings struct {
	EndpointURL string   `json:"endpoint_url"`
	Recipients  []string `json:"recipients"`
	// RequestsPerMinute throttles sends per recipient; zero means one per minute
	RequestsPerMinute float64 `json:"requests_per_minute,omitempty"`
}

// SMSHandler forwards alerts to the internal SMS gateway, one request per
// recipient. SMS is an expensive, intrusive medium, so the handler suppresses
// everything below critical priority regardless of the channel filter. That
// policy is deliberately handler-local rather than part of the shared filter
// model.
type SMSHandler struct {
	log        *logger.Logger
	httpClient *http.Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewSMSHandler creates a new SMS channel handler
func NewSMSHandler(log *logger.Logger, client *http.Client) *SMSHandler {
	return &SMSHandler{
		log:        log,
		httpClient: newHTTPClient(client),
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Name returns the channel identifier
func (h *SMSHandler) Name() alert.Channel {
	return alert.ChannelSMS
}

// Deliver sends one SMS gateway request per configured recipient for
// critical alerts. A failed recipient does not stop the remaining ones; the
// first error is reported after all recipients were attempted.
func (h *SMSHandler) Deliver(ctx context.Context, a *alert.Alert, settings []byte) error {
	if a.Priority != alert.PriorityCritical {
		h.log.WithFields(map[string]any{
			"alert_id": a.ID,
			"priority": a.Priority,
		}).Debug("sms suppressed for non-critical alert")
		return nil
	}

	cfg, err := decodeSettings[SMSSettings](settings)
	if err != nil {
		return err
	}
	if cfg.EndpointURL == "" || len(cfg.Recipients) == 0 {
		h.log.With("alert_id", a.ID).Debug("sms endpoint or recipients not configured, skipping")
		return nil
	}

	var firstErr error
	sent := 0
	for _, recipient := range cfg.Recipients {
		if !h.limiter(recipient, cfg.RequestsPerMinute).Allow() {
			h.log.WithFields(map[string]any{
				"alert_id":  a.ID,
				"recipient": recipient,
			}).Warn("sms rate limit hit, skipping recipient")
			continue
		}

		payload := map[string]any{
			"to":       recipient,
			"message":  fmt.Sprintf("[CRITICAL] %s: %s", a.Title, a.Message),
			"alert_id": a.ID,
		}
		if err := postJSON(ctx, h.httpClient, cfg.EndpointURL, payload, nil); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("sms delivery to %s: %w", recipient, err)
			}
			continue
		}
		sent++
	}

	h.log.WithFields(map[string]any{
		"alert_id": a.ID,
		"sent":     sent,
	}).Debug("sms notifications sent")
	return firstErr
}

func (h *SMSHandler) limiter(recipient string, perMinute float64) *rate.Limiter {
	if perMinute <= 0 {
		perMinute = 1
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	lim, ok := h.limiters[recipient]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(perMinute/60), 1)
		h.limiters[recipient] = lim
	}
	return lim
}
