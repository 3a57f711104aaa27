package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"shareboard/internal/domain/content"
	"shareboard/internal/infrastructure/storage"
	"shareboard/internal/interfaces/httpserver/responses"
)

// SettingsHandler exposes the cleanup settings, system reset and health.
type SettingsHandler struct {
	contents *content.Service
	cleanup  *content.CleanupCell
	storage  *storage.LocalStorage
	log      zerolog.Logger
}

func NewSettingsHandler(contents *content.Service, cleanup *content.CleanupCell, store *storage.LocalStorage, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		contents: contents,
		cleanup:  cleanup,
		storage:  store,
		log:      log.With().Str("component", "settings-handler").Logger(),
	}
}

type cleanupRequest struct {
	Enabled    *bool `json:"enabled" binding:"required"`
	PeriodDays int   `json:"periodDays"`
}

// GetCleanup returns the current retention settings.
func (h *SettingsHandler) GetCleanup(c *gin.Context) {
	responses.OK(c, h.cleanup.Get())
}

// UpdateCleanup replaces the retention settings. A non-positive period keeps
// the previous value.
func (h *SettingsHandler) UpdateCleanup(c *gin.Context) {
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "enabled flag is required")
		return
	}
	updated := h.cleanup.Update(*req.Enabled, req.PeriodDays)
	h.log.Info().
		Bool("enabled", updated.Enabled).
		Int("period_days", updated.PeriodDays).
		Msg("cleanup settings updated")
	responses.OKMessage(c, "cleanup settings updated", updated)
}

// Reset wipes all records and stored payloads.
func (h *SettingsHandler) Reset(c *gin.Context) {
	if err := h.contents.Reset(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("system reset failed")
		responses.HandleError(c, err, "system reset failed")
		return
	}
	h.log.Warn().Msg("system reset completed")
	responses.OKMessage(c, "system reset", nil)
}

// Health reports process liveness plus upload-directory writability.
func (h *SettingsHandler) Health(c *gin.Context) {
	if err := h.storage.Health(c.Request.Context()); err != nil {
		responses.HandleError(c, err, "upload directory is not writable")
		return
	}
	responses.OK(c, gin.H{"status": "ok"})
}
