package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/errors"
	"github.com/vthink/alertd/internal/pkg/logger"
	"github.com/vthink/alertd/internal/pkg/metrics"
)

// RouterOptions bound the dispatcher. Zero values fall back to defaults.
type RouterOptions struct {
	// HandlerTimeout bounds each channel handler invocation (default 10s)
	HandlerTimeout time.Duration
	// QueueSize bounds pending deliveries per channel (default 64)
	QueueSize int
	// MaxInFlight bounds handler invocations running concurrently across
	// all channels (default 32)
	MaxInFlight int64
}

const defaultHandlerTimeout = 10 * time.Second

// AlertService implements alert.Service. It owns the in-memory alert log,
// the channel registry and the subscriber bus, and fans accepted alerts out
// to channel handlers through a per-channel dispatcher.
type AlertService struct {
	log        *logger.Logger
	store      *alertStore
	dispatcher *dispatcher
	timeout    time.Duration

	mu          sync.RWMutex
	config      alert.Config
	handlers    map[alert.Channel]alert.Handler
	subscribers map[alert.Channel][]*subscription

	// nowFn allows overriding for tests
	nowFn func() time.Time
}

type subscription struct {
	fn alert.SubscribeFunc
}

// NewAlertService creates a new alert router with the given configuration
func NewAlertService(cfg alert.Config, log *logger.Logger, opts RouterOptions) *AlertService {
	if cfg.Channels == nil {
		cfg = alert.DefaultConfig()
	}
	timeout := opts.HandlerTimeout
	if timeout <= 0 {
		timeout = defaultHandlerTimeout
	}
	return &AlertService{
		log:         log,
		store:       newAlertStore(),
		dispatcher:  newDispatcher(log, opts.QueueSize, opts.MaxInFlight),
		timeout:     timeout,
		config:      cfg.Clone(),
		handlers:    make(map[alert.Channel]alert.Handler),
		subscribers: make(map[alert.Channel][]*subscription),
		nowFn:       time.Now,
	}
}

// Send validates and routes a new alert. Only ValidationError crosses this
// boundary; delivery failures are absorbed by the dispatcher and handlers.
func (s *AlertService) Send(ctx context.Context, draft alert.Draft) (*alert.Alert, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	now := s.nowFn()
	a := &alert.Alert{
		ID:        s.newID(now),
		Type:      draft.Type,
		Priority:  draft.Priority,
		Title:     draft.Title,
		Message:   draft.Message,
		Timestamp: now,
		Channels:  append([]alert.Channel(nil), draft.Channels...),
		Actions:   append([]alert.Action(nil), draft.Actions...),
		Metadata:  draft.Metadata,
		ExpiresAt: draft.ExpiresAt,
	}

	s.store.Append(a)
	metrics.RecordAlertRouted(string(a.Type), string(a.Priority))

	type target struct {
		ch       alert.Channel
		handler  alert.Handler
		settings []byte
	}
	var targets []target

	s.mu.RLock()
	passesGlobal := s.config.GlobalFilters.Accepts(a)
	retention := s.config.RetentionDays
	if passesGlobal {
		for ch, cc := range s.config.Channels {
			if !cc.Enabled || !a.TargetsChannel(ch) || !cc.Filters.Accepts(a) {
				continue
			}
			h, ok := s.handlers[ch]
			if !ok {
				continue
			}
			targets = append(targets, target{ch: ch, handler: h, settings: cc.Settings})
		}
	}
	s.mu.RUnlock()

	if passesGlobal {
		for _, t := range targets {
			s.dispatcher.Enqueue(t.ch, delivery{
				alert:    a,
				handler:  t.handler,
				settings: t.settings,
				timeout:  s.timeout,
			})
		}
		s.notifySubscribers(a)
	} else {
		metrics.RecordAlertSuppressed("global")
	}

	s.sweep(now, retention)

	s.log.WithFields(map[string]any{
		"alert_id": a.ID,
		"type":     a.Type,
		"priority": a.Priority,
		"channels": a.Channels,
	}).Info("alert routed")

	return a, nil
}

// Acknowledge records that a human has handled the alert. Unknown ids are a
// benign no-op: the alert may have been purged by the retention sweep while
// the caller's UI still showed it.
func (s *AlertService) Acknowledge(id, acknowledgedBy string) {
	if s.store.Acknowledge(id, acknowledgedBy, s.nowFn()) {
		metrics.RecordAcknowledged()
		s.log.WithFields(map[string]any{
			"alert_id":        id,
			"acknowledged_by": acknowledgedBy,
		}).Info("alert acknowledged")
		return
	}
	s.log.With("alert_id", id).Debug("acknowledge for unknown alert ignored")
}

// RegisterChannel adds or replaces a channel's handler and configuration.
// Subscriptions registered on the channel survive a handler replacement.
func (s *AlertService) RegisterChannel(ch alert.Channel, h alert.Handler, cfg alert.ChannelConfig) {
	s.mu.Lock()
	s.handlers[ch] = h
	s.config.Channels[ch] = cfg
	s.mu.Unlock()

	s.log.With("channel", ch).Debug("channel registered")
}

// Subscribe registers an in-process callback for a channel. Callbacks fire
// synchronously, in registration order, for every alert routed to the
// channel. The returned function removes exactly this subscription.
func (s *AlertService) Subscribe(ch alert.Channel, fn alert.SubscribeFunc) func() {
	sub := &subscription{fn: fn}

	s.mu.Lock()
	s.subscribers[ch] = append(s.subscribers[ch], sub)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subscribers[ch]
		for i, candidate := range subs {
			if candidate == sub {
				s.subscribers[ch] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// List returns alerts matching the filter, newest first. When a channel
// filter is set, the result is soft-capped at MaxAlertsPerChannel.
func (s *AlertService) List(filter alert.Filter) []*alert.Alert {
	out := s.store.List(filter)

	if filter.Channel != "" {
		s.mu.RLock()
		maxPerChannel := s.config.MaxAlertsPerChannel
		s.mu.RUnlock()
		if maxPerChannel > 0 && len(out) > maxPerChannel {
			out = out[:maxPerChannel]
		}
	}
	return out
}

// GetStats recomputes aggregate counts from the current in-memory log
func (s *AlertService) GetStats() alert.Stats {
	return s.store.Stats()
}

// UpdateConfig shallow-merges the patch into the live configuration. It
// takes effect for the next Send call, not retroactively.
func (s *AlertService) UpdateConfig(patch alert.ConfigPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Channels != nil {
		s.config.Channels = make(map[alert.Channel]alert.ChannelConfig, len(patch.Channels))
		for ch, cc := range patch.Channels {
			s.config.Channels[ch] = cc
		}
	}
	if patch.GlobalFilters != nil {
		gf := *patch.GlobalFilters
		s.config.GlobalFilters = &gf
	}
	if patch.RetentionDays != nil {
		s.config.RetentionDays = *patch.RetentionDays
	}
	if patch.MaxAlertsPerChannel != nil {
		s.config.MaxAlertsPerChannel = *patch.MaxAlertsPerChannel
	}
}

// GetConfig returns a copy of the current configuration
func (s *AlertService) GetConfig() alert.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Clone()
}

// Sweep purges alerts outside the retention window. Send already sweeps
// lazily; this method exists for the optional scheduled sweep covering idle
// periods.
func (s *AlertService) Sweep() int {
	s.mu.RLock()
	retention := s.config.RetentionDays
	s.mu.RUnlock()
	return s.sweep(s.nowFn(), retention)
}

// Close stops the dispatcher after draining pending deliveries
func (s *AlertService) Close() {
	s.dispatcher.Close()
}

func (s *AlertService) sweep(now time.Time, retentionDays int) int {
	if retentionDays <= 0 {
		return 0
	}
	cutoff := now.Add(-time.Duration(retentionDays) * 24 * time.Hour)
	removed := s.store.PurgeOlderThan(cutoff, now)
	if removed > 0 {
		s.log.With("removed", removed).Debug("retention sweep purged alerts")
	}
	return removed
}

func (s *AlertService) notifySubscribers(a *alert.Alert) {
	// Snapshot under the read lock, invoke outside it so a callback may
	// call back into the service without deadlocking.
	s.mu.RLock()
	var fns []alert.SubscribeFunc
	for _, ch := range a.Channels {
		for _, sub := range s.subscribers[ch] {
			fns = append(fns, sub.fn)
		}
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(a)
	}
}

// newID builds a process-unique alert id from the creation instant and a
// random suffix
func (s *AlertService) newID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("alert_%d_%s", now.UnixMilli(), suffix)
}

func validateDraft(draft alert.Draft) error {
	if len(draft.Channels) == 0 {
		return errors.Validation("alert must target at least one channel")
	}
	if !draft.Priority.IsValid() {
		return errors.Validation(fmt.Sprintf("unknown priority %q", draft.Priority))
	}
	if !draft.Type.IsValid() {
		return errors.Validation(fmt.Sprintf("unknown alert type %q", draft.Type))
	}
	return nil
}
