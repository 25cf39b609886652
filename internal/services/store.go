package services

import (
	"sync"
	"time"

	"github.com/vthink/alertd/internal/domain/alert"
)

// alertStore is the mutex-guarded in-memory alert log. Alerts are append-only
// except for acknowledgment, which the store applies under its write lock.
// Readers receive copies so delivery and UI code can never observe a torn
// acknowledgment update.
type alertStore struct {
	mu     sync.RWMutex
	alerts []*alert.Alert
	byID   map[string]*alert.Alert
}

func newAlertStore() *alertStore {
	return &alertStore{
		byID: make(map[string]*alert.Alert),
	}
}

// Append adds a new alert to the log. The store keeps its own copy, so the
// caller's alert stays untouched when Acknowledge later mutates the stored
// one and in-flight deliveries can read it without a lock.
func (s *alertStore) Append(a *alert.Alert) {
	cp := *a
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, &cp)
	s.byID[cp.ID] = &cp
}

// Get returns a copy of the alert with the given id
func (s *alertStore) Get(id string) (alert.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return alert.Alert{}, false
	}
	return *a, true
}

// List returns copies of alerts matching the filter, newest first
func (s *alertStore) List(filter alert.Filter) []*alert.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*alert.Alert, 0, len(s.alerts))
	// The log is append-only with monotonically increasing timestamps, so
	// walking it backwards yields newest-first order.
	for i := len(s.alerts) - 1; i >= 0; i-- {
		a := s.alerts[i]
		if filter.Matches(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

// Acknowledge sets the acknowledgment fields. Repeated calls are
// last-write-wins. Returns false when the id is unknown.
func (s *alertStore) Acknowledge(id, by string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return false
	}
	a.Acknowledged = true
	a.AcknowledgedBy = by
	a.AcknowledgedAt = &at
	return true
}

// PurgeOlderThan removes alerts created before cutoff and alerts whose
// ExpiresAt has passed. Returns the number of alerts removed.
func (s *alertStore) PurgeOlderThan(cutoff, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.alerts[:0]
	removed := 0
	for _, a := range s.alerts {
		expired := a.ExpiresAt != nil && a.ExpiresAt.Before(now)
		if a.Timestamp.Before(cutoff) || expired {
			delete(s.byID, a.ID)
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.alerts = kept
	return removed
}

// Stats recomputes aggregate counts over the current log. Every recognized
// priority and type gets an entry even when its count is zero.
func (s *alertStore) Stats() alert.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := alert.Stats{
		Total:      len(s.alerts),
		ByPriority: make(map[alert.Priority]int, 5),
		ByType:     make(map[alert.Type]int),
	}
	for _, p := range alert.Priorities() {
		stats.ByPriority[p] = 0
	}
	for _, t := range alert.Types() {
		stats.ByType[t] = 0
	}

	for _, a := range s.alerts {
		stats.ByPriority[a.Priority]++
		stats.ByType[a.Type]++
		if a.Acknowledged {
			stats.Acknowledged++
		}
	}
	stats.Unacknowledged = stats.Total - stats.Acknowledged
	return stats
}

// Len returns the current log size
func (s *alertStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}
