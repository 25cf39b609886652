package client

import (
	"context"
	"net/http"
)

// ConfigService handles routing configuration calls
type ConfigService struct {
	client *Client
}

// UpdateConfigRequest represents a partial configuration update. Absent
// fields keep their current values; a present channels map replaces the
// channel set wholesale.
type UpdateConfigRequest struct {
	Channels            map[string]ChannelConfig `json:"channels,omitempty"`
	GlobalFilters       *FilterConfig            `json:"globalFilters,omitempty"`
	RetentionDays       *int                     `json:"retentionDays,omitempty"`
	MaxAlertsPerChannel *int                     `json:"maxAlertsPerChannel,omitempty"`
}

// Get retrieves the current routing configuration
func (s *ConfigService) Get(ctx context.Context) (*RouterConfig, error) {
	var cfg RouterConfig
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/v1/config/", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Update applies a partial configuration update and returns the result
func (s *ConfigService) Update(ctx context.Context, req *UpdateConfigRequest) (*RouterConfig, error) {
	var cfg RouterConfig
	if err := s.client.doRequest(ctx, http.MethodPatch, "/api/v1/config/", req, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
