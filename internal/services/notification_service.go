package services

import (
	"context"
	"encoding/json"

	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/logger"
)

// NotificationService is the toast-style façade over the alert router: a
// second router instance with a reduced configuration. Every notice reaches
// the dashboard and the log; critical notices additionally go out over email
// and slack. It shares the alert type and priority vocabulary rather than
// defining a parallel hierarchy.
type NotificationService struct {
	router *AlertService
}

// NewNotificationService creates the façade with its own reduced router
// configuration. Settings blobs for email and slack are optional; when nil
// the corresponding handler treats delivery as a no-op.
func NewNotificationService(log *logger.Logger, opts RouterOptions, emailSettings, slackSettings json.RawMessage) *NotificationService {
	criticalOnly := &alert.FilterConfig{MinPriority: alert.PriorityCritical}
	cfg := alert.Config{
		Channels: map[alert.Channel]alert.ChannelConfig{
			alert.ChannelDashboard: {Enabled: true},
			alert.ChannelLog:       {Enabled: true},
			alert.ChannelEmail:     {Enabled: true, Filters: criticalOnly, Settings: emailSettings},
			alert.ChannelSlack:     {Enabled: true, Filters: criticalOnly, Settings: slackSettings},
		},
		RetentionDays:       1,
		MaxAlertsPerChannel: 100,
	}
	return &NotificationService{
		router: NewAlertService(cfg, log, opts),
	}
}

// RegisterChannel installs a handler on the façade's router, keeping the
// channel configuration the façade was constructed with.
func (s *NotificationService) RegisterChannel(h alert.Handler) {
	ch := h.Name()
	cfg := s.router.GetConfig()
	channelCfg := alert.ChannelConfig{Enabled: false}
	if existing, ok := cfg.Channels[ch]; ok {
		channelCfg = existing
	}
	s.router.RegisterChannel(ch, h, channelCfg)
}

// Notify validates and routes a notice. Only validation errors surface.
// Notices with no explicit channel list target every façade channel and let
// the per-channel filters decide.
func (s *NotificationService) Notify(ctx context.Context, d alert.Draft) (*alert.Alert, error) {
	if len(d.Channels) == 0 {
		d.Channels = []alert.Channel{
			alert.ChannelDashboard,
			alert.ChannelLog,
			alert.ChannelEmail,
			alert.ChannelSlack,
		}
	}
	return s.router.Send(ctx, d)
}

// Subscribe registers a callback for notices routed to the given channel
func (s *NotificationService) Subscribe(ch alert.Channel, fn alert.SubscribeFunc) func() {
	return s.router.Subscribe(ch, fn)
}

// List returns retained notices matching the filter, newest first
func (s *NotificationService) List(f alert.Filter) []*alert.Alert {
	return s.router.List(f)
}

// Acknowledge marks a notice as seen
func (s *NotificationService) Acknowledge(id, by string) {
	s.router.Acknowledge(id, by)
}

// Close drains the façade's dispatcher
func (s *NotificationService) Close() {
	s.router.Close()
}
