package channels

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/logger"
)

func testAlert(p alert.Priority) *alert.Alert {
	return &alert.Alert{
		ID:        "alert_1_test",
		Type:      alert.TypeSecurityScan,
		Priority:  p,
		Title:     "open port detected",
		Message:   "port 22 exposed",
		Timestamp: time.Unix(1700000000, 0),
		Channels:  []alert.Channel{alert.ChannelSlack},
	}
}

type capture struct {
	mu      sync.Mutex
	bodies  [][]byte
	headers []http.Header
}

func captureServer(t *testing.T, status int) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies = append(c.bodies, body)
		c.headers = append(c.headers, r.Header.Clone())
		c.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bodies)
}

func TestSlackHandler_Deliver(t *testing.T) {
	srv, c := captureServer(t, http.StatusOK)
	h := NewSlackHandler(logger.Nop(), srv.Client())

	a := testAlert(alert.PriorityCritical)
	a.Actions = []alert.Action{{ID: "1", Label: "Runbook", Action: "open", URL: "https://runbook"}}

	settings, _ := json.Marshal(SlackSettings{
		WebhookURL: srv.URL,
		Channel:    "#alerts",
		Username:   "alertd",
	})
	if err := h.Deliver(context.Background(), a, settings); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if c.count() != 1 {
		t.Fatalf("webhook received %d requests, want 1", c.count())
	}

	var msg struct {
		Channel     string `json:"channel"`
		Username    string `json:"username"`
		Attachments []struct {
			Color   string `json:"color"`
			Title   string `json:"title"`
			Text    string `json:"text"`
			Actions []struct {
				Type string `json:"type"`
				Text string `json:"text"`
				URL  string `json:"url"`
			} `json:"actions"`
		} `json:"attachments"`
	}
	if err := json.Unmarshal(c.bodies[0], &msg); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if msg.Channel != "#alerts" || msg.Username != "alertd" {
		t.Errorf("channel/username = %q/%q", msg.Channel, msg.Username)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(msg.Attachments))
	}
	att := msg.Attachments[0]
	if att.Color != "#ff0000" {
		t.Errorf("critical color = %q, want #ff0000", att.Color)
	}
	if att.Title != "open port detected" {
		t.Errorf("title = %q", att.Title)
	}
	if len(att.Actions) != 1 || att.Actions[0].URL != "https://runbook" {
		t.Errorf("actions = %+v, want runbook button", att.Actions)
	}
}

func TestSlackHandler_PriorityColors(t *testing.T) {
	tests := []struct {
		priority alert.Priority
		color    string
	}{
		{alert.PriorityCritical, "#ff0000"},
		{alert.PriorityHigh, "#ff8c00"},
		{alert.PriorityMedium, "#ffcc00"},
		{alert.PriorityLow, "#36a64f"},
		{alert.PriorityInfo, "#439fe0"},
	}
	for _, tt := range tests {
		if got := priorityColor(tt.priority); got != tt.color {
			t.Errorf("priorityColor(%s) = %q, want %q", tt.priority, got, tt.color)
		}
	}
}

func TestSlackHandler_MissingWebhookIsNoOp(t *testing.T) {
	h := NewSlackHandler(logger.Nop(), nil)
	if err := h.Deliver(context.Background(), testAlert(alert.PriorityHigh), nil); err != nil {
		t.Errorf("Deliver() with no settings = %v, want nil", err)
	}
}

func TestSlackHandler_ServerErrorReported(t *testing.T) {
	srv, _ := captureServer(t, http.StatusInternalServerError)
	h := NewSlackHandler(logger.Nop(), srv.Client())

	settings, _ := json.Marshal(SlackSettings{WebhookURL: srv.URL})
	if err := h.Deliver(context.Background(), testAlert(alert.PriorityHigh), settings); err == nil {
		t.Error("Deliver() = nil for 500 response, want error")
	}
}

func TestEmailHandler_Deliver(t *testing.T) {
	srv, c := captureServer(t, http.StatusOK)
	h := NewEmailHandler(logger.Nop(), srv.Client())

	settings, _ := json.Marshal(EmailSettings{
		EndpointURL: srv.URL,
		Recipients:  []string{"ops@example.com", "dev@example.com"},
	})
	if err := h.Deliver(context.Background(), testAlert(alert.PriorityHigh), settings); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	var payload struct {
		To       []string       `json:"to"`
		Subject  string         `json:"subject"`
		Template string         `json:"template"`
		Data     map[string]any `json:"data"`
	}
	if err := json.Unmarshal(c.bodies[0], &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if len(payload.To) != 2 {
		t.Errorf("to = %v, want 2 recipients", payload.To)
	}
	if payload.Subject != "[high] open port detected" {
		t.Errorf("subject = %q", payload.Subject)
	}
	if payload.Template != "alert" {
		t.Errorf("template = %q, want default alert", payload.Template)
	}
	if payload.Data["id"] != "alert_1_test" {
		t.Errorf("data.id = %v", payload.Data["id"])
	}
}

func TestEmailHandler_MissingRecipientsIsNoOp(t *testing.T) {
	srv, c := captureServer(t, http.StatusOK)
	h := NewEmailHandler(logger.Nop(), srv.Client())

	settings, _ := json.Marshal(EmailSettings{EndpointURL: srv.URL})
	if err := h.Deliver(context.Background(), testAlert(alert.PriorityHigh), settings); err != nil {
		t.Errorf("Deliver() = %v, want nil", err)
	}
	if c.count() != 0 {
		t.Errorf("gateway received %d requests without recipients, want 0", c.count())
	}
}

func TestSMSHandler_SuppressesBelowCritical(t *testing.T) {
	srv, c := captureServer(t, http.StatusOK)
	h := NewSMSHandler(logger.Nop(), srv.Client())

	settings, _ := json.Marshal(SMSSettings{
		EndpointURL: srv.URL,
		Recipients:  []string{"+15550001111"},
	})

	for _, p := range []alert.Priority{alert.PriorityInfo, alert.PriorityLow, alert.PriorityMedium, alert.PriorityHigh} {
		if err := h.Deliver(context.Background(), testAlert(p), settings); err != nil {
			t.Errorf("Deliver(%s) error = %v", p, err)
		}
	}
	if c.count() != 0 {
		t.Errorf("gateway received %d requests below critical, want 0", c.count())
	}

	if err := h.Deliver(context.Background(), testAlert(alert.PriorityCritical), settings); err != nil {
		t.Fatalf("Deliver(critical) error = %v", err)
	}
	if c.count() != 1 {
		t.Errorf("gateway received %d requests for critical, want 1", c.count())
	}
}

func TestSMSHandler_OneRequestPerRecipient(t *testing.T) {
	srv, c := captureServer(t, http.StatusOK)
	h := NewSMSHandler(logger.Nop(), srv.Client())

	settings, _ := json.Marshal(SMSSettings{
		EndpointURL:       srv.URL,
		Recipients:        []string{"+15550001111", "+15550002222", "+15550003333"},
		RequestsPerMinute: 600,
	})
	if err := h.Deliver(context.Background(), testAlert(alert.PriorityCritical), settings); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if c.count() != 3 {
		t.Fatalf("gateway received %d requests, want 3", c.count())
	}

	seen := map[string]bool{}
	for _, body := range c.bodies {
		var p struct {
			To      string `json:"to"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &p); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		seen[p.To] = true
		if p.Message != "[CRITICAL] open port detected: port 22 exposed" {
			t.Errorf("message = %q", p.Message)
		}
	}
	if len(seen) != 3 {
		t.Errorf("distinct recipients = %d, want 3", len(seen))
	}
}

func TestSMSHandler_RateLimitSkipsRecipient(t *testing.T) {
	srv, c := captureServer(t, http.StatusOK)
	h := NewSMSHandler(logger.Nop(), srv.Client())

	settings, _ := json.Marshal(SMSSettings{
		EndpointURL: srv.URL,
		Recipients:  []string{"+15550001111"},
		// one per minute, burst of one
		RequestsPerMinute: 1,
	})

	for i := 0; i < 3; i++ {
		if err := h.Deliver(context.Background(), testAlert(alert.PriorityCritical), settings); err != nil {
			t.Fatalf("Deliver() error = %v", err)
		}
	}
	if c.count() != 1 {
		t.Errorf("gateway received %d requests under rate limit, want 1", c.count())
	}
}

func TestWebhookHandler_SignedFanOut(t *testing.T) {
	srv1, c1 := captureServer(t, http.StatusOK)
	srv2, c2 := captureServer(t, http.StatusOK)
	h := NewWebhookHandler(logger.Nop(), nil)

	const secret = "s3cret"
	settings, _ := json.Marshal(WebhookSettings{
		URLs:   []string{srv1.URL, srv2.URL},
		Secret: secret,
		Source: "ci",
	})
	if err := h.Deliver(context.Background(), testAlert(alert.PriorityHigh), settings); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if c1.count() != 1 || c2.count() != 1 {
		t.Fatalf("endpoints received %d/%d requests, want 1/1", c1.count(), c2.count())
	}

	body := c1.bodies[0]
	var payload struct {
		Alert  *alert.Alert `json:"alert"`
		Source string       `json:"source"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Alert == nil || payload.Alert.ID != "alert_1_test" {
		t.Errorf("payload alert = %+v", payload.Alert)
	}
	if payload.Source != "ci" {
		t.Errorf("source = %q, want ci", payload.Source)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if got := c1.headers[0].Get("X-Webhook-Signature"); got != want {
		t.Errorf("signature = %q, want %q", got, want)
	}
}

func TestWebhookHandler_UnsignedWithoutSecret(t *testing.T) {
	srv, c := captureServer(t, http.StatusOK)
	h := NewWebhookHandler(logger.Nop(), nil)

	settings, _ := json.Marshal(WebhookSettings{URLs: []string{srv.URL}})
	if err := h.Deliver(context.Background(), testAlert(alert.PriorityHigh), settings); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if got := c.headers[0].Get("X-Webhook-Signature"); got != "" {
		t.Errorf("signature = %q without secret, want empty", got)
	}
}

func TestWebhookHandler_EndpointsFailIndependently(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()
	srv, c := captureServer(t, http.StatusOK)
	h := NewWebhookHandler(logger.Nop(), nil)

	settings, _ := json.Marshal(WebhookSettings{URLs: []string{failing.URL, srv.URL}})
	err := h.Deliver(context.Background(), testAlert(alert.PriorityHigh), settings)
	if err == nil {
		t.Error("Deliver() = nil with one failing endpoint, want error")
	}
	if c.count() != 1 {
		t.Errorf("healthy endpoint received %d requests, want 1", c.count())
	}
}

func TestLogHandler_Deliver(t *testing.T) {
	h := NewLogHandler(logger.Nop())
	for _, p := range []alert.Priority{alert.PriorityInfo, alert.PriorityLow, alert.PriorityMedium, alert.PriorityHigh, alert.PriorityCritical} {
		if err := h.Deliver(context.Background(), testAlert(p), nil); err != nil {
			t.Errorf("Deliver(%s) error = %v, log sink must never fail", p, err)
		}
	}
}

func TestDashboardHandler_RecentRing(t *testing.T) {
	h := NewDashboardHandler(alert.ChannelDashboard, 3)

	for i := 0; i < 5; i++ {
		a := testAlert(alert.PriorityLow)
		a.ID = fmt.Sprintf("alert_%d_x", i)
		if err := h.Deliver(context.Background(), a, nil); err != nil {
			t.Fatalf("Deliver() error = %v", err)
		}
	}

	recent := h.Recent()
	if len(recent) != 3 {
		t.Fatalf("Recent() = %d alerts, want capacity 3", len(recent))
	}
	// Newest first, oldest two evicted
	if recent[0].ID != "alert_4_x" || recent[2].ID != "alert_2_x" {
		t.Errorf("Recent() order = [%s .. %s], want newest first", recent[0].ID, recent[2].ID)
	}
}

func TestDashboardHandler_RecentReturnsCopies(t *testing.T) {
	h := NewDashboardHandler(alert.ChannelDashboard, 3)
	if err := h.Deliver(context.Background(), testAlert(alert.PriorityLow), nil); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	h.Recent()[0].Acknowledged = true

	if h.Recent()[0].Acknowledged {
		t.Error("mutating a Recent() alert leaked into the ring")
	}
}
