package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/vthink/alertd/internal/api/handlers"
	"github.com/vthink/alertd/internal/api/router"
	"github.com/vthink/alertd/internal/channels"
	"github.com/vthink/alertd/internal/config"
	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/logger"
	"github.com/vthink/alertd/internal/pkg/validator"
	"github.com/vthink/alertd/internal/services"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the alert routing server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	routerCfg, err := buildRouterConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to build routing config: %w", err)
	}

	opts := services.RouterOptions{
		HandlerTimeout: cfg.Router.HandlerTimeout,
		QueueSize:      cfg.Router.QueueSize,
		MaxInFlight:    int64(cfg.Router.MaxInFlight),
	}

	alertSvc := services.NewAlertService(routerCfg, log, opts)
	defer alertSvc.Close()

	registerHandlers(alertSvc, routerCfg, log)

	notifSvc := services.NewNotificationService(log, opts,
		routerCfg.Channels[alert.ChannelEmail].Settings,
		routerCfg.Channels[alert.ChannelSlack].Settings)
	defer notifSvc.Close()

	notifSvc.RegisterChannel(channels.NewDashboardHandler(alert.ChannelDashboard, cfg.Router.MaxAlertsPerChannel))
	notifSvc.RegisterChannel(channels.NewLogHandler(log))
	notifSvc.RegisterChannel(channels.NewEmailHandler(log, nil))
	notifSvc.RegisterChannel(channels.NewSlackHandler(log, nil))

	// Optional scheduled sweep covering idle periods
	var sweeper *cron.Cron
	if cfg.Router.SweepSchedule != "" {
		sweeper = cron.New()
		_, err := sweeper.AddFunc(cfg.Router.SweepSchedule, func() {
			if removed := alertSvc.Sweep(); removed > 0 {
				log.Infof("retention sweep removed %d alerts", removed)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", cfg.Router.SweepSchedule, err)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	val := validator.New()
	h := &router.Handlers{
		Health:       handlers.NewHealthHandler(log),
		Alert:        handlers.NewAlertHandler(alertSvc, log, val),
		Config:       handlers.NewConfigHandler(alertSvc, log),
		Notification: handlers.NewNotificationHandler(notifSvc, log, val),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Infof("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// buildRouterConfig turns environment configuration into the router's
// channel map, serializing provider credentials into per-channel settings
// blobs.
func buildRouterConfig(cfg *config.Config) (alert.Config, error) {
	rc := alert.DefaultConfig()
	rc.RetentionDays = cfg.Router.RetentionDays
	rc.MaxAlertsPerChannel = cfg.Router.MaxAlertsPerChannel

	slackSettings, err := json.Marshal(channels.SlackSettings{
		WebhookURL: cfg.Channels.Slack.WebhookURL,
		Channel:    cfg.Channels.Slack.Channel,
		Username:   cfg.Channels.Slack.Username,
	})
	if err != nil {
		return alert.Config{}, err
	}
	rc.Channels[alert.ChannelSlack] = alert.ChannelConfig{
		Enabled:  cfg.Channels.Slack.Enabled,
		Settings: slackSettings,
	}

	emailSettings, err := json.Marshal(channels.EmailSettings{
		EndpointURL: cfg.Channels.Email.EndpointURL,
		Recipients:  cfg.Channels.Email.Recipients,
		Template:    cfg.Channels.Email.Template,
	})
	if err != nil {
		return alert.Config{}, err
	}
	rc.Channels[alert.ChannelEmail] = alert.ChannelConfig{
		Enabled:  cfg.Channels.Email.Enabled,
		Settings: emailSettings,
	}

	smsSettings, err := json.Marshal(channels.SMSSettings{
		EndpointURL:       cfg.Channels.SMS.EndpointURL,
		Recipients:        cfg.Channels.SMS.Recipients,
		RequestsPerMinute: cfg.Channels.SMS.PerRecipientRate,
	})
	if err != nil {
		return alert.Config{}, err
	}
	rc.Channels[alert.ChannelSMS] = alert.ChannelConfig{
		Enabled:  cfg.Channels.SMS.Enabled,
		Settings: smsSettings,
	}

	webhookSettings, err := json.Marshal(channels.WebhookSettings{
		URLs:   cfg.Channels.Webhook.URLs,
		Secret: cfg.Channels.Webhook.Secret,
		Source: cfg.Channels.Webhook.Source,
	})
	if err != nil {
		return alert.Config{}, err
	}
	rc.Channels[alert.ChannelWebhook] = alert.ChannelConfig{
		Enabled:  cfg.Channels.Webhook.Enabled,
		Settings: webhookSettings,
	}

	return rc, nil
}

func registerHandlers(svc *services.AlertService, rc alert.Config, log *logger.Logger) {
	register := func(h alert.Handler) {
		ch := h.Name()
		svc.RegisterChannel(ch, h, rc.Channels[ch])
	}

	register(channels.NewDashboardHandler(alert.ChannelDashboard, rc.MaxAlertsPerChannel))
	register(channels.NewDashboardHandler(alert.ChannelDevPortal, rc.MaxAlertsPerChannel))
	register(channels.NewLogHandler(log))
	register(channels.NewSlackHandler(log, nil))
	register(channels.NewEmailHandler(log, nil))
	register(channels.NewSMSHandler(log, nil))
	register(channels.NewWebhookHandler(log, nil))
}
