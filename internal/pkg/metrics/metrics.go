package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alertd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alertd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "alertd",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Routing metrics
	alertsRoutedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alertd",
			Subsystem: "router",
			Name:      "alerts_routed_total",
			Help:      "Total number of alerts accepted by the router",
		},
		[]string{"type", "priority"},
	)

	alertsSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alertd",
			Subsystem: "router",
			Name:      "alerts_suppressed_total",
			Help:      "Alerts stopped by a filter before any delivery",
		},
		[]string{"stage"},
	)

	alertsAcknowledgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "alertd",
			Subsystem: "router",
			Name:      "alerts_acknowledged_total",
			Help:      "Total number of acknowledgments applied",
		},
	)

	// Delivery metrics
	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alertd",
			Subsystem: "delivery",
			Name:      "attempts_total",
			Help:      "Channel delivery attempts by outcome",
		},
		[]string{"channel", "status"},
	)

	deliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alertd",
			Subsystem: "delivery",
			Name:      "duration_seconds",
			Help:      "Duration of channel handler invocations in seconds",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"channel"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "alertd",
			Subsystem: "delivery",
			Name:      "queue_depth",
			Help:      "Pending deliveries per channel queue",
		},
		[]string{"channel"},
	)
)

// Delivery outcomes recorded by the dispatcher
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
	StatusDropped = "dropped"
)

// RecordAlertRouted increments the routed counter
func RecordAlertRouted(alertType, priority string) {
	alertsRoutedTotal.WithLabelValues(alertType, priority).Inc()
}

// RecordAlertSuppressed increments the suppressed counter for a filter stage
func RecordAlertSuppressed(stage string) {
	alertsSuppressedTotal.WithLabelValues(stage).Inc()
}

// RecordAcknowledged increments the acknowledgment counter
func RecordAcknowledged() {
	alertsAcknowledgedTotal.Inc()
}

// RecordDelivery records one delivery attempt with its outcome and duration
func RecordDelivery(channel, status string, duration time.Duration) {
	deliveriesTotal.WithLabelValues(channel, status).Inc()
	deliveryDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// SetQueueDepth sets the pending-delivery gauge for a channel
func SetQueueDepth(channel string, depth int) {
	queueDepth.WithLabelValues(channel).Set(float64(depth))
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments HTTP requests with prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePath := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePath = rctx.RoutePattern()
		}

		status := strconv.Itoa(ww.status)
		httpRequestsTotal.WithLabelValues(r.Method, routePath, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePath, status).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
