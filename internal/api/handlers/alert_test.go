package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/logger"
	"github.com/vthink/alertd/internal/pkg/validator"
	"github.com/vthink/alertd/internal/services"
)

func newTestAlertHandler(t *testing.T) (*AlertHandler, *services.AlertService) {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	cfg := alert.Config{
		Channels: map[alert.Channel]alert.ChannelConfig{
			alert.ChannelLog: {Enabled: true},
		},
		RetentionDays:       30,
		MaxAlertsPerChannel: 100,
	}
	svc := services.NewAlertService(cfg, log, services.RouterOptions{})
	t.Cleanup(svc.Close)
	return NewAlertHandler(svc, log, validator.New()), svc
}

func TestAlertHandler_Create(t *testing.T) {
	handler, _ := newTestAlertHandler(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "valid alert",
			body:           `{"type":"system_health","priority":"high","title":"t","message":"m","channels":["log"]}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing channels",
			body:           `{"type":"system_health","priority":"high","title":"t","message":"m"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown priority",
			body:           `{"type":"system_health","priority":"urgent","title":"t","message":"m","channels":["log"]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed body",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			handler.Create(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}

			if rr.Code == http.StatusCreated {
				var resp struct {
					Success bool `json:"success"`
					Data    struct {
						ID       string `json:"id"`
						Priority string `json:"priority"`
					} `json:"data"`
				}
				if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if !resp.Success || resp.Data.ID == "" {
					t.Errorf("response = %+v, want success with id", resp)
				}
			}
		})
	}
}

func TestAlertHandler_ListAndStats(t *testing.T) {
	handler, svc := newTestAlertHandler(t)

	var ids []string
	for _, p := range []alert.Priority{alert.PriorityLow, alert.PriorityCritical} {
		a, err := svc.Send(context.Background(), alert.Draft{
			Type:     alert.TypeSystemHealth,
			Priority: p,
			Title:    "t",
			Message:  "m",
			Channels: []alert.Channel{alert.ChannelLog},
		})
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		ids = append(ids, a.ID)
	}
	svc.Acknowledge(ids[0], "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts?priority=critical", nil)
	rr := httptest.NewRecorder()
	handler.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("List status = %d, want 200", rr.Code)
	}
	var listResp struct {
		Data []struct {
			Priority string `json:"priority"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listResp.Data) != 1 || listResp.Data[0].Priority != "critical" {
		t.Errorf("filtered list = %+v, want single critical alert", listResp.Data)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/alerts/stats", nil)
	rr = httptest.NewRecorder()
	handler.Stats(rr, req)

	var statsResp struct {
		Data struct {
			Total          int            `json:"total"`
			Acknowledged   int            `json:"acknowledged"`
			Unacknowledged int            `json:"unacknowledged"`
			ByPriority     map[string]int `json:"byPriority"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&statsResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if statsResp.Data.Total != 2 {
		t.Errorf("stats total = %d, want 2", statsResp.Data.Total)
	}
	if statsResp.Data.Acknowledged != 1 || statsResp.Data.Unacknowledged != 1 {
		t.Errorf("stats acked/unacked = %d/%d, want 1/1",
			statsResp.Data.Acknowledged, statsResp.Data.Unacknowledged)
	}
	if statsResp.Data.ByPriority["critical"] != 1 {
		t.Errorf("critical count = %d, want 1", statsResp.Data.ByPriority["critical"])
	}
}

func TestAlertHandler_Acknowledge(t *testing.T) {
	handler, svc := newTestAlertHandler(t)

	a, err := svc.Send(context.Background(), alert.Draft{
		Type:     alert.TypeSystemHealth,
		Priority: alert.PriorityHigh,
		Title:    "t",
		Message:  "m",
		Channels: []alert.Channel{alert.ChannelLog},
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	r := chi.NewRouter()
	r.Post("/api/v1/alerts/{id}/acknowledge", handler.Acknowledge)

	body := bytes.NewBufferString(`{"acknowledgedBy":"alice"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/"+a.ID+"/acknowledge", body)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}

	listed := svc.List(alert.Filter{})
	if len(listed) != 1 || !listed[0].Acknowledged || listed[0].AcknowledgedBy != "alice" {
		t.Errorf("alert not acknowledged through handler: %+v", listed[0])
	}

	// Unknown ids are a benign success
	req = httptest.NewRequest(http.MethodPost, "/api/v1/alerts/alert_0_missing/acknowledge",
		bytes.NewBufferString(`{"acknowledgedBy":"alice"}`))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("unknown-id ack status = %d, want 200", rr.Code)
	}

	// Missing identity fails validation
	req = httptest.NewRequest(http.MethodPost, "/api/v1/alerts/"+a.ID+"/acknowledge",
		bytes.NewBufferString(`{}`))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("ack without identity status = %d, want 400", rr.Code)
	}
}

func TestConfigHandler_GetAndUpdate(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	cfg := alert.DefaultConfig()
	svc := services.NewAlertService(cfg, log, services.RouterOptions{})
	t.Cleanup(svc.Close)
	handler := NewConfigHandler(svc, log)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/config", nil)
	rr := httptest.NewRecorder()
	handler.Get(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Get status = %d, want 200", rr.Code)
	}
	var getResp struct {
		Data struct {
			RetentionDays int                       `json:"retentionDays"`
			Channels      map[string]map[string]any `json:"channels"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&getResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if getResp.Data.RetentionDays != 30 {
		t.Errorf("retentionDays = %d, want 30", getResp.Data.RetentionDays)
	}
	if len(getResp.Data.Channels) != 7 {
		t.Errorf("channels = %d, want 7 defaults", len(getResp.Data.Channels))
	}

	body := bytes.NewBufferString(`{"retentionDays":7,"globalFilters":{"minPriority":"high"}}`)
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/config", body)
	rr = httptest.NewRecorder()
	handler.Update(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Update status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}

	got := svc.GetConfig()
	if got.RetentionDays != 7 {
		t.Errorf("retentionDays after patch = %d, want 7", got.RetentionDays)
	}
	if got.GlobalFilters == nil || got.GlobalFilters.MinPriority != alert.PriorityHigh {
		t.Errorf("globalFilters after patch = %+v, want min high", got.GlobalFilters)
	}
	// Channels untouched by a patch without a channel map
	if len(got.Channels) != 7 {
		t.Errorf("channels after patch = %d, want 7", len(got.Channels))
	}
}
