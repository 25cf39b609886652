package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// AlertService handles alert-related API calls
type AlertService struct {
	client *Client
}

// CreateAlertRequest represents a request to create an alert
type CreateAlertRequest struct {
	Type      string         `json:"type"`
	Priority  string         `json:"priority"` // info, low, medium, high, critical
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Channels  []string       `json:"channels"`
	Actions   []Action       `json:"actions,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
}

// AlertListOptions contains options for listing alerts
type AlertListOptions struct {
	Type         string
	Priority     string
	Channel      string
	Acknowledged *bool
}

// Create submits a new alert for routing
func (s *AlertService) Create(ctx context.Context, req *CreateAlertRequest) (*Alert, error) {
	var a Alert
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/v1/alerts/", req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// List retrieves retained alerts, newest first
func (s *AlertService) List(ctx context.Context, opts *AlertListOptions) ([]Alert, error) {
	query := url.Values{}

	if opts != nil {
		if opts.Type != "" {
			query.Set("type", opts.Type)
		}
		if opts.Priority != "" {
			query.Set("priority", opts.Priority)
		}
		if opts.Channel != "" {
			query.Set("channel", opts.Channel)
		}
		if opts.Acknowledged != nil {
			query.Set("acknowledged", strconv.FormatBool(*opts.Acknowledged))
		}
	}

	path := "/api/v1/alerts/"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var alerts []Alert
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Stats retrieves aggregate alert counts
func (s *AlertService) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/v1/alerts/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Acknowledge marks an alert as seen by the given identity
func (s *AlertService) Acknowledge(ctx context.Context, id, acknowledgedBy string) error {
	body := map[string]string{"acknowledgedBy": acknowledgedBy}
	return s.client.doRequest(ctx, http.MethodPost, "/api/v1/alerts/"+id+"/acknowledge", body, nil)
}
