package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// NotificationService handles toast-style notification calls
type NotificationService struct {
	client *Client
}

// CreateNotificationRequest represents a toast-style notice
type CreateNotificationRequest struct {
	Type     string         `json:"type"`
	Priority string         `json:"priority"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NotificationListOptions contains options for listing notifications
type NotificationListOptions struct {
	Priority     string
	Acknowledged *bool
}

// Create submits a new notification
func (s *NotificationService) Create(ctx context.Context, req *CreateNotificationRequest) (*Alert, error) {
	var a Alert
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/v1/notifications/", req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// List retrieves retained notifications, newest first
func (s *NotificationService) List(ctx context.Context, opts *NotificationListOptions) ([]Alert, error) {
	query := url.Values{}

	if opts != nil {
		if opts.Priority != "" {
			query.Set("priority", opts.Priority)
		}
		if opts.Acknowledged != nil {
			query.Set("acknowledged", strconv.FormatBool(*opts.Acknowledged))
		}
	}

	path := "/api/v1/notifications/"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var notices []Alert
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &notices); err != nil {
		return nil, err
	}
	return notices, nil
}
