package channels

import (
	"context"
	"sync"

	"github.com/vthink/alertd/internal/domain/alert"
)

const defaultDashboardCapacity = 100

// DashboardHandler is an in-process sink that keeps the most recent alerts
// for UI surfaces to poll. Delivery cannot fail.
type DashboardHandler struct {
	name alert.Channel

	mu     sync.RWMutex
	recent []*alert.Alert
	cap    int
}

// NewDashboardHandler creates an in-process sink registered under the given
// channel name. Both dashboard and dev_portal use this handler type.
func NewDashboardHandler(name alert.Channel, capacity int) *DashboardHandler {
	if capacity <= 0 {
		capacity = defaultDashboardCapacity
	}
	return &DashboardHandler{name: name, cap: capacity}
}

// Name returns the channel identifier
func (h *DashboardHandler) Name() alert.Channel {
	return h.name
}

// Deliver records the alert in the in-memory ring
func (h *DashboardHandler) Deliver(_ context.Context, a *alert.Alert, _ []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recent = append(h.recent, a)
	if len(h.recent) > h.cap {
		h.recent = h.recent[len(h.recent)-h.cap:]
	}
	return nil
}

// Recent returns copies of the retained alerts, newest first
func (h *DashboardHandler) Recent() []*alert.Alert {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*alert.Alert, len(h.recent))
	for i, a := range h.recent {
		cp := *a
		out[len(h.recent)-1-i] = &cp
	}
	return out
}
