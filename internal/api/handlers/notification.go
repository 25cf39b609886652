package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vthink/alertd/internal/api/dto"
	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/errors"
	"github.com/vthink/alertd/internal/pkg/logger"
	"github.com/vthink/alertd/internal/pkg/utils"
	"github.com/vthink/alertd/internal/pkg/validator"
	"github.com/vthink/alertd/internal/services"
)

type NotificationHandler struct {
	service   *services.NotificationService
	logger    *logger.Logger
	validator *validator.Validator
}

func NewNotificationHandler(service *services.NotificationService, log *logger.Logger, val *validator.Validator) *NotificationHandler {
	return &NotificationHandler{service: service, logger: log, validator: val}
}

// Create routes a toast-style notice through the reduced router
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationWithDetails("Validation failed", errs))
		return
	}

	a, err := h.service.Notify(r.Context(), alert.Draft{
		Type:     alert.Type(req.Type),
		Priority: alert.Priority(req.Priority),
		Title:    req.Title,
		Message:  req.Message,
		Metadata: req.Metadata,
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			utils.WriteError(w, appErr)
		} else {
			utils.WriteError(w, errors.Internal("Failed to route notification", err))
		}
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, alertToDTO(a))
}

// List returns retained notices, newest first
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := alert.Filter{
		Priority: alert.Priority(r.URL.Query().Get("priority")),
	}
	if v := r.URL.Query().Get("acknowledged"); v != "" {
		acked := v == "true"
		filter.Acknowledged = &acked
	}

	notices := h.service.List(filter)

	dtos := make([]dto.AlertDTO, len(notices))
	for i, n := range notices {
		dtos[i] = alertToDTO(n)
	}

	utils.WriteSuccess(w, http.StatusOK, dtos)
}
