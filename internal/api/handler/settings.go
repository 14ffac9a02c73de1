package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iconidentify/vidcard/internal/domain"
	"github.com/iconidentify/vidcard/internal/service"
)

// SettingsManager reads and updates the persisted settings.
type SettingsManager interface {
	Load(ctx context.Context) (domain.Settings, error)
	Apply(ctx context.Context, upd service.SettingsUpdate) (domain.Settings, error)
}

// SettingsHandler handles the settings API.
type SettingsHandler struct {
	settings SettingsManager
	logger   *slog.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settings SettingsManager, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

// SettingsResponse is the settings view returned to clients. The key is masked.
type SettingsResponse struct {
	ShowThumbnail   bool   `json:"show_thumbnail"`
	ShowChannelIcon bool   `json:"show_channel_icon"`
	APIKey          string `json:"api_key"`
	HasAPIKey       bool   `json:"has_api_key"`
}

// UpdateSettingsRequest is the JSON body of PUT /api/v1/settings.
// Omitted fields keep their stored values.
type UpdateSettingsRequest struct {
	ShowThumbnail   *bool   `json:"show_thumbnail"`
	ShowChannelIcon *bool   `json:"show_channel_icon"`
	APIKey          *string `json:"api_key"`
}

func newSettingsResponse(s domain.Settings) SettingsResponse {
	masked := s.Masked()
	return SettingsResponse{
		ShowThumbnail:   masked.ShowThumbnail,
		ShowChannelIcon: masked.ShowChannelIcon,
		APIKey:          masked.APIKey,
		HasAPIKey:       s.HasAPIKey(),
	}
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load(r.Context())
	if err != nil {
		h.logger.Error("load settings", "error", err)
		writeError(w, http.StatusServiceUnavailable, domain.ErrSettingsStore.Error())
		return
	}
	writeJSON(w, http.StatusOK, newSettingsResponse(s))
}

// Update handles PUT /api/v1/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	s, err := h.settings.Apply(r.Context(), service.SettingsUpdate{
		ShowThumbnail:   req.ShowThumbnail,
		ShowChannelIcon: req.ShowChannelIcon,
		APIKey:          req.APIKey,
	})
	if err != nil {
		if errors.Is(err, domain.ErrChannelIconRequiresKey) {
			writeError(w, http.StatusUnprocessableEntity, domain.ChannelIconKeyNotice)
			return
		}
		h.logger.Error("save settings", "error", err)
		writeError(w, http.StatusServiceUnavailable, domain.ErrSettingsStore.Error())
		return
	}

	writeJSON(w, http.StatusOK, newSettingsResponse(s))
}
