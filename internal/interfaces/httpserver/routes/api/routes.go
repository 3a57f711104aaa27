package api

import (
	"github.com/gin-gonic/gin"

	"shareboard/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates route registration for the /api surface.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all routes under the /api prefix. Paths are fixed by the
// web client.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/api")

	group.GET("/health", r.handlers.Settings.Health)

	group.GET("/contents", r.handlers.Content.List)
	group.POST("/contents", r.handlers.Content.Create)
	group.GET("/deleted", r.handlers.Content.ListDeleted)
	group.DELETE("/contents/:id", r.handlers.Content.Delete)
	group.POST("/contents/:id/restore", r.handlers.Content.Restore)
	group.DELETE("/contents/:id/permanent", r.handlers.Content.PermanentlyDelete)
	group.POST("/batch/restore", r.handlers.Content.BatchRestore)
	group.DELETE("/batch/permanent", r.handlers.Content.BatchPermanentlyDelete)

	group.POST("/system/reset", r.handlers.Settings.Reset)
	group.GET("/settings/cleanup", r.handlers.Settings.GetCleanup)
	group.POST("/settings/cleanup", r.handlers.Settings.UpdateCleanup)

	group.POST("/video/optimize", r.handlers.Convert.OptimizeVideo)
	group.POST("/audio/to-mp4", r.handlers.Convert.AudioToVideo)
	group.POST("/video/to-audio", r.handlers.Convert.ExtractAudio)

	group.POST("/tts", r.handlers.Speech.Synthesize)
	group.POST("/asr/submit", r.handlers.Speech.SubmitRecognition)
	group.POST("/asr/query", r.handlers.Speech.QueryRecognition)
	group.POST("/asr/transcribe", r.handlers.Speech.Transcribe)
	group.POST("/voice-clone/upload", r.handlers.Speech.CloneVoice)
	group.POST("/voice-clone/status", r.handlers.Speech.VoiceStatus)
}
