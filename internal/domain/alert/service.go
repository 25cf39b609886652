package alert

import "context"

// Handler delivers one alert to a specific external sink. Implementations
// map the channel-agnostic alert into the provider's wire shape, absorb
// delivery failures (the returned error is logged and counted, never used
// for control flow), treat missing provider settings as a logged no-op,
// and must not mutate the alert.
type Handler interface {
	// Name returns the channel identifier the handler serves
	Name() Channel

	// Deliver sends the alert to the sink. settings is the channel's live
	// Settings blob from the router config, re-read per invocation.
	Deliver(ctx context.Context, a *Alert, settings []byte) error
}

// SubscribeFunc receives alerts routed to a subscribed channel. Callbacks
// run synchronously during Send in registration order and must not mutate
// the alert.
type SubscribeFunc func(a *Alert)

// Service defines the interface for the alert router
type Service interface {
	// Send validates and routes a new alert. Only validation errors are
	// returned; delivery failures are absorbed downstream.
	Send(ctx context.Context, draft Draft) (*Alert, error)

	// Acknowledge records that a human has seen the alert. Unknown ids are
	// a benign no-op to tolerate races with the retention sweep.
	Acknowledge(id, acknowledgedBy string)

	// RegisterChannel adds or replaces a channel's handler and configuration.
	// Existing subscriptions on the channel survive a replacement.
	RegisterChannel(ch Channel, h Handler, cfg ChannelConfig)

	// Subscribe registers an in-process callback for a channel and returns
	// the capability to remove exactly that subscription.
	Subscribe(ch Channel, fn SubscribeFunc) (unsubscribe func())

	// List returns alerts matching the filter, newest first
	List(filter Filter) []*Alert

	// GetStats recomputes aggregate counts from the current log
	GetStats() Stats

	// UpdateConfig shallow-merges the patch into the live configuration;
	// it takes effect for the next Send, not retroactively
	UpdateConfig(patch ConfigPatch)

	// GetConfig returns a copy of the current configuration
	GetConfig() Config
}
