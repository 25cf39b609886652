package channels

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/logger"
)

// LogHandler writes alerts to the structured application log. It never makes
// network calls, so it is safe to keep enabled in every environment.
type LogHandler struct {
	log *logger.Logger
}

// NewLogHandler creates a new log channel handler
func NewLogHandler(log *logger.Logger) *LogHandler {
	return &LogHandler{log: log}
}

// Name returns the channel identifier
func (h *LogHandler) Name() alert.Channel {
	return alert.ChannelLog
}

// Deliver emits one log record per alert at a level derived from the alert
// priority.
func (h *LogHandler) Deliver(_ context.Context, a *alert.Alert, _ []byte) error {
	zl := h.log.GetZerolog()
	ev := zl.WithLevel(priorityLevel(a.Priority)).
		Str("alert_id", a.ID).
		Str("alert_type", string(a.Type)).
		Str("priority", string(a.Priority)).
		Str("title", a.Title).
		Time("timestamp", a.Timestamp)
	if len(a.Metadata) > 0 {
		ev = ev.Interface("metadata", a.Metadata)
	}
	ev.Msg(a.Message)
	return nil
}

func priorityLevel(p alert.Priority) zerolog.Level {
	switch p {
	case alert.PriorityCritical:
		return zerolog.ErrorLevel
	case alert.PriorityHigh:
		return zerolog.WarnLevel
	case alert.PriorityMedium:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
