package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vthink/alertd/internal/domain/alert"
)

// MockHandler is a mock implementation of alert.Handler that records every
// delivery it receives. Delay and DeliverError simulate slow and failing
// providers.
type MockHandler struct {
	Channel      alert.Channel
	Delay        time.Duration
	DeliverError error

	mu         sync.Mutex
	deliveries []MockDelivery
}

// MockDelivery captures one Deliver invocation
type MockDelivery struct {
	Alert    *alert.Alert
	Settings []byte
	At       time.Time
}

func NewMockHandler(ch alert.Channel) *MockHandler {
	return &MockHandler{Channel: ch}
}

func (m *MockHandler) Name() alert.Channel {
	return m.Channel
}

func (m *MockHandler) Deliver(ctx context.Context, a *alert.Alert, settings []byte) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	m.deliveries = append(m.deliveries, MockDelivery{Alert: a, Settings: settings, At: time.Now()})
	m.mu.Unlock()
	return m.DeliverError
}

// Deliveries returns a snapshot of recorded deliveries
func (m *MockHandler) Deliveries() []MockDelivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockDelivery, len(m.deliveries))
	copy(out, m.deliveries)
	return out
}

// Count returns the number of recorded deliveries
func (m *MockHandler) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deliveries)
}

// WaitForDeliveries polls until at least n deliveries were recorded or the
// timeout elapses. Returns the number observed.
func (m *MockHandler) WaitForDeliveries(n int, timeout time.Duration) int {
	deadline := time.Now().Add(timeout)
	for {
		if c := m.Count(); c >= n || time.Now().After(deadline) {
			return c
		}
		time.Sleep(5 * time.Millisecond)
	}
}
