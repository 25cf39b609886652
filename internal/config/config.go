package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Router   RouterConfig
	Channels ChannelsConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// RouterConfig contains alert router defaults and dispatcher bounds
type RouterConfig struct {
	RetentionDays       int
	MaxAlertsPerChannel int
	HandlerTimeout      time.Duration
	QueueSize           int
	MaxInFlight         int
	// SweepSchedule is an optional cron expression for a background retention
	// sweep covering idle periods; empty disables it (the lazy sweep on Send
	// always runs).
	SweepSchedule string
}

// ChannelsConfig contains per-provider delivery credentials
type ChannelsConfig struct {
	Slack   SlackConfig
	Email   EmailConfig
	SMS     SMSConfig
	Webhook WebhookConfig
}

// SlackConfig contains chat webhook settings
type SlackConfig struct {
	Enabled    bool
	WebhookURL string
	Channel    string
	Username   string
}

// EmailConfig contains the internal email gateway settings
type EmailConfig struct {
	Enabled     bool
	EndpointURL string
	Recipients  []string
	Template    string
}

// SMSConfig contains the internal SMS gateway settings
type SMSConfig struct {
	Enabled     bool
	EndpointURL string
	Recipients  []string
	// PerRecipientRate bounds outbound SMS requests per recipient per minute
	PerRecipientRate float64
}

// WebhookConfig contains generic webhook fan-out settings
type WebhookConfig struct {
	Enabled bool
	URLs    []string
	Secret  string
	Source  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Router: RouterConfig{
			RetentionDays:       getEnvAsInt("ALERT_RETENTION_DAYS", 30),
			MaxAlertsPerChannel: getEnvAsInt("ALERT_MAX_PER_CHANNEL", 100),
			HandlerTimeout:      getEnvAsDuration("ALERT_HANDLER_TIMEOUT", 10*time.Second),
			QueueSize:           getEnvAsInt("ALERT_QUEUE_SIZE", 64),
			MaxInFlight:         getEnvAsInt("ALERT_MAX_INFLIGHT", 32),
			SweepSchedule:       getEnv("ALERT_SWEEP_SCHEDULE", ""),
		},
		Channels: ChannelsConfig{
			Slack: SlackConfig{
				Enabled:    getEnvAsBool("SLACK_ENABLED", false),
				WebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
				Channel:    getEnv("SLACK_CHANNEL", "#alerts"),
				Username:   getEnv("SLACK_USERNAME", "alertd"),
			},
			Email: EmailConfig{
				Enabled:     getEnvAsBool("EMAIL_ENABLED", false),
				EndpointURL: getEnv("EMAIL_ENDPOINT_URL", ""),
				Recipients:  getEnvAsSlice("EMAIL_RECIPIENTS", nil),
				Template:    getEnv("EMAIL_TEMPLATE", "alert"),
			},
			SMS: SMSConfig{
				Enabled:          getEnvAsBool("SMS_ENABLED", false),
				EndpointURL:      getEnv("SMS_ENDPOINT_URL", ""),
				Recipients:       getEnvAsSlice("SMS_RECIPIENTS", nil),
				PerRecipientRate: getEnvAsFloat("SMS_PER_RECIPIENT_RATE", 1),
			},
			Webhook: WebhookConfig{
				Enabled: getEnvAsBool("WEBHOOK_ENABLED", false),
				URLs:    getEnvAsSlice("WEBHOOK_URLS", nil),
				Secret:  getEnv("WEBHOOK_SECRET", ""),
				Source:  getEnv("WEBHOOK_SOURCE", "alertd"),
			},
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
