package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"shareboard/internal/domain/content"
	"shareboard/internal/domain/convert"
	"shareboard/internal/interfaces/httpserver/responses"
)

// ConvertHandler exposes the ffmpeg conversion endpoints.
type ConvertHandler struct {
	service *convert.Service
	log     zerolog.Logger
}

func NewConvertHandler(service *convert.Service, log zerolog.Logger) *ConvertHandler {
	return &ConvertHandler{
		service: service,
		log:     log.With().Str("component", "convert-handler").Logger(),
	}
}

type convertRequest struct {
	ID string `json:"id" binding:"required"`
}

// OptimizeVideo re-encodes a video record for web playback.
func (h *ConvertHandler) OptimizeVideo(c *gin.Context) {
	h.handle(c, h.service.OptimizeVideo, "failed to optimize video")
}

// AudioToVideo wraps an audio record in a still-image MP4.
func (h *ConvertHandler) AudioToVideo(c *gin.Context) {
	h.handle(c, h.service.AudioToVideo, "failed to convert audio to video")
}

// ExtractAudio pulls the audio track out of a video record.
func (h *ConvertHandler) ExtractAudio(c *gin.Context) {
	h.handle(c, h.service.ExtractAudio, "failed to extract audio")
}

func (h *ConvertHandler) handle(
	c *gin.Context,
	run func(ctx context.Context, id string) (*content.ContentRecord, error),
	fallback string,
) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "id is required")
		return
	}
	derived, err := run(c.Request.Context(), req.ID)
	if err != nil {
		h.log.Error().Err(err).Str("id", req.ID).Msg("conversion failed")
		responses.HandleError(c, err, fallback)
		return
	}
	responses.OK(c, derived)
}
