package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vthink/alertd/internal/api/dto"
	"github.com/vthink/alertd/internal/domain/alert"
	"github.com/vthink/alertd/internal/pkg/errors"
	"github.com/vthink/alertd/internal/pkg/logger"
	"github.com/vthink/alertd/internal/pkg/utils"
)

type ConfigHandler struct {
	service alert.Service
	logger  *logger.Logger
}

func NewConfigHandler(service alert.Service, log *logger.Logger) *ConfigHandler {
	return &ConfigHandler{service: service, logger: log}
}

// Get returns the current routing configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg := h.service.GetConfig()

	channels := make(map[string]dto.ChannelConfigDTO, len(cfg.Channels))
	for ch, cc := range cfg.Channels {
		channels[string(ch)] = dto.ChannelConfigDTO{
			Enabled:  cc.Enabled,
			Filters:  filterConfigToDTO(cc.Filters),
			Settings: cc.Settings,
		}
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ConfigDTO{
		Channels:            channels,
		GlobalFilters:       filterConfigToDTO(cfg.GlobalFilters),
		RetentionDays:       cfg.RetentionDays,
		MaxAlertsPerChannel: cfg.MaxAlertsPerChannel,
	})
}

// Update shallow-merges a partial configuration into the live one. A present
// channels map replaces the channel set wholesale; absent fields keep their
// current values. Takes effect for subsequent sends only.
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	patch := alert.ConfigPatch{
		GlobalFilters:       filterConfigFromDTO(req.GlobalFilters),
		RetentionDays:       req.RetentionDays,
		MaxAlertsPerChannel: req.MaxAlertsPerChannel,
	}
	if req.Channels != nil {
		patch.Channels = make(map[alert.Channel]alert.ChannelConfig, len(req.Channels))
		for ch, cc := range req.Channels {
			patch.Channels[alert.Channel(ch)] = alert.ChannelConfig{
				Enabled:  cc.Enabled,
				Filters:  filterConfigFromDTO(cc.Filters),
				Settings: cc.Settings,
			}
		}
	}

	h.service.UpdateConfig(patch)
	h.logger.Info("Routing configuration updated")

	h.Get(w, r)
}

func filterConfigToDTO(fc *alert.FilterConfig) *dto.FilterConfigDTO {
	if fc == nil {
		return nil
	}
	types := make([]string, len(fc.Types))
	for i, t := range fc.Types {
		types[i] = string(t)
	}
	return &dto.FilterConfigDTO{
		MinPriority: string(fc.MinPriority),
		Types:       types,
	}
}

func filterConfigFromDTO(fc *dto.FilterConfigDTO) *alert.FilterConfig {
	if fc == nil {
		return nil
	}
	types := make([]alert.Type, len(fc.Types))
	for i, t := range fc.Types {
		types[i] = alert.Type(t)
	}
	return &alert.FilterConfig{
		MinPriority: alert.Priority(fc.MinPriority),
		Types:       types,
	}
}
