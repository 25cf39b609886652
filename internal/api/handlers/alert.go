package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vthink/alertd/internal/api/dto"
	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/errors"
	"github.com/vthink/alertd/internal/pkg/logger"
	"github.com/vthink/alertd/internal/pkg/utils"
	"github.com/vthink/alertd/internal/pkg/validator"
)

type AlertHandler struct {
	service   alert.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewAlertHandler(service alert.Service, log *logger.Logger, val *validator.Validator) *AlertHandler {
	return &AlertHandler{service: service, logger: log, validator: val}
}

// Create validates and routes a new alert
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationWithDetails("Validation failed", errs))
		return
	}

	a, err := h.service.Send(r.Context(), draftFromRequest(req))
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			utils.WriteError(w, appErr)
		} else {
			utils.WriteError(w, errors.Internal("Failed to route alert", err))
		}
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, alertToDTO(a))
}

// List returns retained alerts matching the query filters, newest first
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := alert.Filter{
		Type:     alert.Type(q.Get("type")),
		Priority: alert.Priority(q.Get("priority")),
		Channel:  alert.Channel(q.Get("channel")),
	}
	if v := q.Get("acknowledged"); v != "" {
		acked := v == "true"
		filter.Acknowledged = &acked
	}

	alerts := h.service.List(filter)

	dtos := make([]dto.AlertDTO, len(alerts))
	for i, a := range alerts {
		dtos[i] = alertToDTO(a)
	}

	utils.WriteSuccess(w, http.StatusOK, dtos)
}

// Stats returns aggregate counts over the current alert log
func (h *AlertHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.service.GetStats()

	byPriority := make(map[string]int, len(stats.ByPriority))
	for p, n := range stats.ByPriority {
		byPriority[string(p)] = n
	}
	byType := make(map[string]int, len(stats.ByType))
	for t, n := range stats.ByType {
		byType[string(t)] = n
	}

	utils.WriteSuccess(w, http.StatusOK, dto.StatsDTO{
		Total:          stats.Total,
		Acknowledged:   stats.Acknowledged,
		Unacknowledged: stats.Unacknowledged,
		ByPriority:     byPriority,
		ByType:         byType,
	})
}

// Acknowledge records that a human has seen the alert. Unknown ids succeed
// so callers racing the retention sweep do not see spurious failures.
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.AcknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationWithDetails("Validation failed", errs))
		return
	}

	h.service.Acknowledge(id, req.AcknowledgedBy)

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Alert acknowledged", map[string]string{"id": id})
}

func draftFromRequest(req dto.CreateAlertRequest) alert.Draft {
	channels := make([]alert.Channel, len(req.Channels))
	for i, c := range req.Channels {
		channels[i] = alert.Channel(c)
	}

	var actions []alert.Action
	for _, a := range req.Actions {
		actions = append(actions, alert.Action{
			ID:                   a.ID,
			Label:                a.Label,
			Action:               a.Action,
			URL:                  a.URL,
			RequiresConfirmation: a.RequiresConfirmation,
		})
	}

	return alert.Draft{
		Type:      alert.Type(req.Type),
		Priority:  alert.Priority(req.Priority),
		Title:     req.Title,
		Message:   req.Message,
		Channels:  channels,
		Actions:   actions,
		Metadata:  req.Metadata,
		ExpiresAt: req.ExpiresAt,
	}
}

func alertToDTO(a *alert.Alert) dto.AlertDTO {
	channels := make([]string, len(a.Channels))
	for i, c := range a.Channels {
		channels[i] = string(c)
	}

	var actions []dto.ActionDTO
	for _, act := range a.Actions {
		actions = append(actions, dto.ActionDTO{
			ID:                   act.ID,
			Label:                act.Label,
			URL:                  act.URL,
			Action:               act.Action,
			RequiresConfirmation: act.RequiresConfirmation,
		})
	}

	return dto.AlertDTO{
		ID:             a.ID,
		Type:           string(a.Type),
		Priority:       string(a.Priority),
		Title:          a.Title,
		Message:        a.Message,
		Timestamp:      a.Timestamp,
		Channels:       channels,
		Actions:        actions,
		Metadata:       a.Metadata,
		ExpiresAt:      a.ExpiresAt,
		Acknowledged:   a.Acknowledged,
		AcknowledgedBy: a.AcknowledgedBy,
		AcknowledgedAt: a.AcknowledgedAt,
	}
}
