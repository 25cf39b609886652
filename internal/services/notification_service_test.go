package services

import (
	"context"
	"testing"
	"time"

	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/testutil"
)

func TestNotificationService_RoutesEverywhereForCritical(t *testing.T) {
	svc := NewNotificationService(testLogger(), RouterOptions{}, nil, nil)
	defer svc.Close()

	dashboard := testutil.NewMockHandler(alert.ChannelDashboard)
	logSink := testutil.NewMockHandler(alert.ChannelLog)
	email := testutil.NewMockHandler(alert.ChannelEmail)
	slack := testutil.NewMockHandler(alert.ChannelSlack)
	for _, h := range []*testutil.MockHandler{dashboard, logSink, email, slack} {
		svc.RegisterChannel(h)
	}

	_, err := svc.Notify(context.Background(), alert.Draft{
		Type:     alert.TypeSystemHealth,
		Priority: alert.PriorityCritical,
		Title:    "db down",
		Message:  "primary unreachable",
	})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	for _, tc := range []struct {
		name string
		h    *testutil.MockHandler
	}{
		{"dashboard", dashboard},
		{"log", logSink},
		{"email", email},
		{"slack", slack},
	} {
		if got := tc.h.WaitForDeliveries(1, time.Second); got != 1 {
			t.Errorf("%s deliveries = %d for critical notice, want 1", tc.name, got)
		}
	}
}

func TestNotificationService_LocalSinksOnlyBelowCritical(t *testing.T) {
	svc := NewNotificationService(testLogger(), RouterOptions{}, nil, nil)
	defer svc.Close()

	dashboard := testutil.NewMockHandler(alert.ChannelDashboard)
	email := testutil.NewMockHandler(alert.ChannelEmail)
	slack := testutil.NewMockHandler(alert.ChannelSlack)
	for _, h := range []*testutil.MockHandler{dashboard, email, slack} {
		svc.RegisterChannel(h)
	}

	_, err := svc.Notify(context.Background(), alert.Draft{
		Type:     alert.TypeUserActivity,
		Priority: alert.PriorityHigh,
		Title:    "new signup",
		Message:  "user registered",
	})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if got := dashboard.WaitForDeliveries(1, time.Second); got != 1 {
		t.Errorf("dashboard deliveries = %d, want 1", got)
	}
	if got := email.Count(); got != 0 {
		t.Errorf("email deliveries = %d for non-critical notice, want 0", got)
	}
	if got := slack.Count(); got != 0 {
		t.Errorf("slack deliveries = %d for non-critical notice, want 0", got)
	}
}

func TestNotificationService_ListAndAcknowledge(t *testing.T) {
	svc := NewNotificationService(testLogger(), RouterOptions{}, nil, nil)
	defer svc.Close()

	n, err := svc.Notify(context.Background(), alert.Draft{
		Type:     alert.TypeUserActivity,
		Priority: alert.PriorityInfo,
		Title:    "t",
		Message:  "m",
	})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	svc.Acknowledge(n.ID, "alice")

	notices := svc.List(alert.Filter{})
	if len(notices) != 1 {
		t.Fatalf("List() = %d, want 1", len(notices))
	}
	if !notices[0].Acknowledged || notices[0].AcknowledgedBy != "alice" {
		t.Errorf("notice ack state = %v/%q, want acknowledged by alice",
			notices[0].Acknowledged, notices[0].AcknowledgedBy)
	}
}
