package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/logger"
	"github.com/vthink/alertd/internal/pkg/metrics"
)

// delivery is one pending handler invocation. Handler and settings are
// snapshotted at Send time, so a later RegisterChannel or UpdateConfig only
// affects subsequent alerts.
type delivery struct {
	alert    *alert.Alert
	handler  alert.Handler
	settings []byte
	timeout  time.Duration
}

// dispatcher fans alerts out to channel handlers. Each channel gets one
// worker goroutine draining a bounded queue, which preserves delivery order
// within a channel while keeping channels independent of each other. A
// weighted semaphore caps handler invocations in flight across all channels
// so an alert storm cannot grow goroutines without bound.
type dispatcher struct {
	log       *logger.Logger
	inflight  *semaphore.Weighted
	queueSize int

	mu      sync.Mutex
	workers map[alert.Channel]*channelWorker
	closed  bool
	wg      sync.WaitGroup
}

type channelWorker struct {
	name  alert.Channel
	queue chan delivery
}

func newDispatcher(log *logger.Logger, queueSize int, maxInFlight int64) *dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if maxInFlight <= 0 {
		maxInFlight = 32
	}
	return &dispatcher{
		log:       log,
		inflight:  semaphore.NewWeighted(maxInFlight),
		queueSize: queueSize,
		workers:   make(map[alert.Channel]*channelWorker),
	}
}

// Enqueue hands a delivery to the channel's worker. A full queue degrades to
// a logged drop; it never blocks or fails the originating Send.
func (d *dispatcher) Enqueue(ch alert.Channel, dl delivery) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	w, ok := d.workers[ch]
	if !ok {
		w = &channelWorker{name: ch, queue: make(chan delivery, d.queueSize)}
		d.workers[ch] = w
		d.wg.Add(1)
		go d.run(w)
	}
	d.mu.Unlock()

	select {
	case w.queue <- dl:
		metrics.SetQueueDepth(string(ch), len(w.queue))
	default:
		metrics.RecordDelivery(string(ch), metrics.StatusDropped, 0)
		d.log.WithFields(map[string]any{
			"channel":  ch,
			"alert_id": dl.alert.ID,
		}).Warn("delivery queue full, dropping delivery")
	}
}

// Close stops all workers after draining their queues
func (d *dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, w := range d.workers {
		close(w.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *dispatcher) run(w *channelWorker) {
	defer d.wg.Done()
	for dl := range w.queue {
		metrics.SetQueueDepth(string(w.name), len(w.queue))
		d.deliver(w.name, dl)
	}
}

// deliver invokes the handler with a bounded wait. The worker waits for the
// handler or the timeout before taking the next queued delivery, so order
// within the channel holds. A handler that ignores its context keeps running
// on its own goroutine but can no longer delay the channel.
func (d *dispatcher) deliver(ch alert.Channel, dl delivery) {
	if err := d.inflight.Acquire(context.Background(), 1); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dl.timeout)
	start := time.Now()

	done := make(chan error, 1)
	go func() {
		defer d.inflight.Release(1)
		done <- dl.handler.Deliver(ctx, dl.alert, dl.settings)
	}()

	select {
	case err := <-done:
		cancel()
		elapsed := time.Since(start)
		if err != nil {
			metrics.RecordDelivery(string(ch), metrics.StatusFailed, elapsed)
			d.log.WithFields(map[string]any{
				"channel":  ch,
				"alert_id": dl.alert.ID,
			}).ErrorWithErr(err, "channel delivery failed")
			return
		}
		metrics.RecordDelivery(string(ch), metrics.StatusSent, elapsed)
	case <-ctx.Done():
		cancel()
		metrics.RecordDelivery(string(ch), metrics.StatusTimeout, time.Since(start))
		d.log.WithFields(map[string]any{
			"channel":  ch,
			"alert_id": dl.alert.ID,
			"timeout":  dl.timeout.String(),
		}).Warn("channel delivery timed out")
	}
}
