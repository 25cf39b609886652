package client

import (
	"encoding/json"
	"time"
)

// Alert represents an alert as returned by the API
type Alert struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Priority       string         `json:"priority"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Timestamp      time.Time      `json:"timestamp"`
	Channels       []string       `json:"channels"`
	Actions        []Action       `json:"actions,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	ExpiresAt      *time.Time     `json:"expiresAt,omitempty"`
	Acknowledged   bool           `json:"acknowledged"`
	AcknowledgedBy string         `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time     `json:"acknowledgedAt,omitempty"`
}

// Action is a suggested follow-up rendered by channel sinks
type Action struct {
	ID                   string `json:"id,omitempty"`
	Label                string `json:"label"`
	URL                  string `json:"url,omitempty"`
	Action               string `json:"action,omitempty"`
	RequiresConfirmation bool   `json:"requiresConfirmation,omitempty"`
}

// Stats represents aggregate alert counts
type Stats struct {
	Total          int            `json:"total"`
	Acknowledged   int            `json:"acknowledged"`
	Unacknowledged int            `json:"unacknowledged"`
	ByPriority     map[string]int `json:"byPriority"`
	ByType         map[string]int `json:"byType"`
}

// ChannelConfig represents one channel's routing configuration
type ChannelConfig struct {
	Enabled  bool            `json:"enabled"`
	Filters  *FilterConfig   `json:"filters,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// FilterConfig represents a priority/type gate
type FilterConfig struct {
	MinPriority string   `json:"minPriority,omitempty"`
	Types       []string `json:"types,omitempty"`
}

// RouterConfig represents the full routing configuration
type RouterConfig struct {
	Channels            map[string]ChannelConfig `json:"channels"`
	GlobalFilters       *FilterConfig            `json:"globalFilters,omitempty"`
	RetentionDays       int                      `json:"retentionDays"`
	MaxAlertsPerChannel int                      `json:"maxAlertsPerChannel"`
}
