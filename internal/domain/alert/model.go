package alert

import (
	"encoding/json"
	"time"
)

// Alert represents a routed event with priority, type and target channels
type Alert struct {
	ID             string         `json:"id"`
	Type           Type           `json:"type"`
	Priority       Priority       `json:"priority"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Timestamp      time.Time      `json:"timestamp"`
	Channels       []Channel      `json:"channels"`
	Actions        []Action       `json:"actions,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	Acknowledged   bool           `json:"acknowledged"`
	AcknowledgedBy string         `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at,omitempty"`
}

// Action is a structural hint a channel or UI may render as a button or link.
// The router never executes actions itself.
type Action struct {
	ID                   string `json:"id"`
	Label                string `json:"label"`
	Action               string `json:"action"`
	URL                  string `json:"url,omitempty"`
	RequiresConfirmation bool   `json:"requires_confirmation,omitempty"`
}

// Draft is an alert as submitted by a producer, before the router stamps
// id and timestamp
type Draft struct {
	Type      Type           `json:"type"`
	Priority  Priority       `json:"priority"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Channels  []Channel      `json:"channels"`
	Actions   []Action       `json:"actions,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// Type categorizes an alert. Used for filtering and statistics only; it does
// not influence delivery shape.
type Type string

const (
	TypeDevPortal          Type = "dev_portal"
	TypeUpgradeMonitor     Type = "upgrade_monitor"
	TypeSecurityScan       Type = "security_scan"
	TypePerformanceMonitor Type = "performance_monitor"
	TypeErrorTracking      Type = "error_tracking"
	TypeDeploymentStatus   Type = "deployment_status"
	TypeTestFailure        Type = "test_failure"
	TypeBuildFailure       Type = "build_failure"
	TypeUserActivity       Type = "user_activity"
	TypeSystemHealth       Type = "system_health"
	TypeDatabaseMonitor    Type = "database_monitor"
	TypeAPIMonitor         Type = "api_monitor"
	TypeVulnerability      Type = "vulnerability_detected"
	TypeUnauthorizedAccess Type = "unauthorized_access"
	TypeSuspiciousActivity Type = "suspicious_activity"
	TypeResourceUsage      Type = "resource_usage"
	TypeDiskSpace          Type = "disk_space"
	TypeMemoryUsage        Type = "memory_usage"
	TypeCPUUsage           Type = "cpu_usage"
)

// Priority is the ordered severity enum: info < low < medium < high < critical
type Priority string

const (
	PriorityInfo     Priority = "info"
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Channel identifies a delivery sink. The set is open: new channels are added
// by registering a handler under a new identifier.
type Channel string

const (
	ChannelDashboard Channel = "dashboard"
	ChannelDevPortal Channel = "dev_portal"
	ChannelSlack     Channel = "slack"
	ChannelEmail     Channel = "email"
	ChannelSMS       Channel = "sms"
	ChannelWebhook   Channel = "webhook"
	ChannelLog       Channel = "log"
)

// FilterConfig is a priority/type gate applied globally or per channel.
// An empty MinPriority means no floor; an empty Types list passes every type.
type FilterConfig struct {
	MinPriority Priority `json:"min_priority,omitempty"`
	Types       []Type   `json:"types,omitempty"`
}

// ChannelConfig is the static per-channel configuration held by the router.
// Settings carries the provider-specific credential blob (webhook URLs,
// recipient lists) and is re-read on every handler invocation so rotation
// via UpdateConfig takes effect without a restart.
type ChannelConfig struct {
	Enabled  bool            `json:"enabled"`
	Filters  *FilterConfig   `json:"filters,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// Config is the router's whole configuration
type Config struct {
	Channels            map[Channel]ChannelConfig `json:"channels"`
	GlobalFilters       *FilterConfig             `json:"global_filters,omitempty"`
	RetentionDays       int                       `json:"retention_days"`
	MaxAlertsPerChannel int                       `json:"max_alerts_per_channel"`
}

// ConfigPatch is a partial Config for shallow merges via UpdateConfig.
// Nil fields are left untouched.
type ConfigPatch struct {
	Channels            map[Channel]ChannelConfig `json:"channels,omitempty"`
	GlobalFilters       *FilterConfig             `json:"global_filters,omitempty"`
	RetentionDays       *int                      `json:"retention_days,omitempty"`
	MaxAlertsPerChannel *int                      `json:"max_alerts_per_channel,omitempty"`
}

// Filter contains alert listing options. Zero values match everything;
// set fields are combined conjunctively.
type Filter struct {
	Type         Type
	Priority     Priority
	Channel      Channel
	Acknowledged *bool
}

// Stats is a read-through aggregate over the in-memory log
type Stats struct {
	Total          int              `json:"total"`
	ByPriority     map[Priority]int `json:"by_priority"`
	ByType         map[Type]int     `json:"by_type"`
	Acknowledged   int              `json:"acknowledged"`
	Unacknowledged int              `json:"unacknowledged"`
}

var priorityLevels = map[Priority]int{
	PriorityInfo:     0,
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityCritical: 4,
}

// Level returns the numeric rank of a priority for threshold comparisons.
// Unknown priorities rank below info.
func (p Priority) Level() int {
	if lvl, ok := priorityLevels[p]; ok {
		return lvl
	}
	return -1
}

// IsValid checks if the priority is a recognized member
func (p Priority) IsValid() bool {
	_, ok := priorityLevels[p]
	return ok
}

// Priorities returns all priorities in ascending severity order
func Priorities() []Priority {
	return []Priority{PriorityInfo, PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

var knownTypes = map[Type]struct{}{
	TypeDevPortal:          {},
	TypeUpgradeMonitor:     {},
	TypeSecurityScan:       {},
	TypePerformanceMonitor: {},
	TypeErrorTracking:      {},
	TypeDeploymentStatus:   {},
	TypeTestFailure:        {},
	TypeBuildFailure:       {},
	TypeUserActivity:       {},
	TypeSystemHealth:       {},
	TypeDatabaseMonitor:    {},
	TypeAPIMonitor:         {},
	TypeVulnerability:      {},
	TypeUnauthorizedAccess: {},
	TypeSuspiciousActivity: {},
	TypeResourceUsage:      {},
	TypeDiskSpace:          {},
	TypeMemoryUsage:        {},
	TypeCPUUsage:           {},
}

// IsValid checks if the type is a recognized member
func (t Type) IsValid() bool {
	_, ok := knownTypes[t]
	return ok
}

// Types returns all recognized alert types
func Types() []Type {
	out := make([]Type, 0, len(knownTypes))
	for t := range knownTypes {
		out = append(out, t)
	}
	return out
}

// TargetsChannel reports whether the alert names ch in its channel set
func (a *Alert) TargetsChannel(ch Channel) bool {
	for _, c := range a.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// Accepts reports whether the alert passes the filter's priority floor and
// type allow-list. A nil filter accepts everything.
func (f *FilterConfig) Accepts(a *Alert) bool {
	if f == nil {
		return true
	}
	if f.MinPriority != "" && a.Priority.Level() < f.MinPriority.Level() {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == a.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Matches reports whether the alert satisfies every set field of the listing filter
func (f Filter) Matches(a *Alert) bool {
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Priority != "" && a.Priority != f.Priority {
		return false
	}
	if f.Channel != "" && !a.TargetsChannel(f.Channel) {
		return false
	}
	if f.Acknowledged != nil && a.Acknowledged != *f.Acknowledged {
		return false
	}
	return true
}

// DefaultConfig mirrors the stock channel set: dashboard and log are on by
// default, external providers are opt-in.
func DefaultConfig() Config {
	return Config{
		Channels: map[Channel]ChannelConfig{
			ChannelDashboard: {Enabled: true},
			ChannelDevPortal: {Enabled: true},
			ChannelSlack:     {Enabled: false},
			ChannelEmail:     {Enabled: false},
			ChannelSMS:       {Enabled: false},
			ChannelWebhook:   {Enabled: false},
			ChannelLog:       {Enabled: true},
		},
		RetentionDays:       30,
		MaxAlertsPerChannel: 100,
	}
}

// Clone returns a copy of the config safe to hand to callers. Channel maps
// are copied; Settings blobs are shared and must be treated as read-only.
func (c Config) Clone() Config {
	out := c
	out.Channels = make(map[Channel]ChannelConfig, len(c.Channels))
	for k, v := range c.Channels {
		out.Channels[k] = v
	}
	if c.GlobalFilters != nil {
		gf := *c.GlobalFilters
		out.GlobalFilters = &gf
	}
	return out
}
