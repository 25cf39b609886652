package dto

import (
	"encoding/json"
	"time"
)

// AlertDTO represents an alert in API responses
// Uses camelCase for frontend compatibility
type AlertDTO struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Priority       string         `json:"priority"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Timestamp      time.Time      `json:"timestamp"`
	Channels       []string       `json:"channels"`
	Actions        []ActionDTO    `json:"actions,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	ExpiresAt      *time.Time     `json:"expiresAt,omitempty"`
	Acknowledged   bool           `json:"acknowledged"`
	AcknowledgedBy string         `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time     `json:"acknowledgedAt,omitempty"`
}

// ActionDTO represents a suggested follow-up action on an alert
type ActionDTO struct {
	ID                   string `json:"id,omitempty"`
	Label                string `json:"label"`
	URL                  string `json:"url,omitempty"`
	Action               string `json:"action,omitempty"`
	RequiresConfirmation bool   `json:"requiresConfirmation,omitempty"`
}

// CreateAlertRequest represents an alert creation request
type CreateAlertRequest struct {
	Type      string         `json:"type" validate:"required"`
	Priority  string         `json:"priority" validate:"required,oneof=info low medium high critical"`
	Title     string         `json:"title" validate:"required"`
	Message   string         `json:"message" validate:"required"`
	Channels  []string       `json:"channels" validate:"required,min=1"`
	Actions   []ActionDTO    `json:"actions,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
}

// AcknowledgeRequest carries the caller-resolved identity for an ack
type AcknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledgedBy" validate:"required"`
}

// StatsDTO represents aggregate alert counts
type StatsDTO struct {
	Total          int            `json:"total"`
	Acknowledged   int            `json:"acknowledged"`
	Unacknowledged int            `json:"unacknowledged"`
	ByPriority     map[string]int `json:"byPriority"`
	ByType         map[string]int `json:"byType"`
}

// ChannelConfigDTO represents one channel's routing configuration
type ChannelConfigDTO struct {
	Enabled  bool             `json:"enabled"`
	Filters  *FilterConfigDTO `json:"filters,omitempty"`
	Settings json.RawMessage  `json:"settings,omitempty"`
}

// FilterConfigDTO represents a priority/type gate
type FilterConfigDTO struct {
	MinPriority string   `json:"minPriority,omitempty"`
	Types       []string `json:"types,omitempty"`
}

// ConfigDTO represents the full router configuration
type ConfigDTO struct {
	Channels            map[string]ChannelConfigDTO `json:"channels"`
	GlobalFilters       *FilterConfigDTO            `json:"globalFilters,omitempty"`
	RetentionDays       int                         `json:"retentionDays"`
	MaxAlertsPerChannel int                         `json:"maxAlertsPerChannel"`
}

// UpdateConfigRequest represents a partial configuration update. Absent
// fields keep their current values; a present channels map replaces the
// channel set wholesale.
type UpdateConfigRequest struct {
	Channels            map[string]ChannelConfigDTO `json:"channels,omitempty"`
	GlobalFilters       *FilterConfigDTO            `json:"globalFilters,omitempty"`
	RetentionDays       *int                        `json:"retentionDays,omitempty"`
	MaxAlertsPerChannel *int                        `json:"maxAlertsPerChannel,omitempty"`
}

// CreateNotificationRequest represents a toast-style notice
type CreateNotificationRequest struct {
	Type     string         `json:"type" validate:"required"`
	Priority string         `json:"priority" validate:"required,oneof=info low medium high critical"`
	Title    string         `json:"title" validate:"required"`
	Message  string         `json:"message" validate:"required"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
