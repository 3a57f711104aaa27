package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"shareboard/internal/domain/speech"
	"shareboard/internal/interfaces/httpserver/responses"
)

// Cloned voice samples are short recordings; bound reads defensively anyway.
const maxVoiceSampleBytes = 20 << 20

// SpeechHandler exposes synthesis, recognition and voice-clone endpoints.
type SpeechHandler struct {
	service *speech.Service
	log     zerolog.Logger
}

func NewSpeechHandler(service *speech.Service, log zerolog.Logger) *SpeechHandler {
	return &SpeechHandler{
		service: service,
		log:     log.With().Str("component", "speech-handler").Logger(),
	}
}

type ttsRequest struct {
	Text         string  `json:"text" binding:"required"`
	VoiceType    string  `json:"voice_type"`
	SpeedRatio   float64 `json:"speed_ratio"`
	Emotion      string  `json:"emotion"`
	EmotionScale float64 `json:"emotion_scale"`
}

type asrSubmitRequest struct {
	Audio    string `json:"audio" binding:"required"`
	Format   string `json:"format"`
	Language string `json:"language"`
}

type asrQueryRequest struct {
	TaskID string `json:"taskId" binding:"required"`
}

type voiceStatusRequest struct {
	SpeakerID string `json:"speaker_id" binding:"required"`
}

// Synthesize turns text into audio and publishes it into the feed.
func (h *SpeechHandler) Synthesize(c *gin.Context) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "text is required")
		return
	}
	rec, err := h.service.Synthesize(c.Request.Context(), speech.SynthesizeInput{
		Text:         req.Text,
		VoiceType:    req.VoiceType,
		SpeedRatio:   req.SpeedRatio,
		Emotion:      req.Emotion,
		EmotionScale: req.EmotionScale,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("synthesis failed")
		responses.HandleError(c, err, "speech synthesis failed")
		return
	}
	responses.OK(c, rec)
}

// SubmitRecognition starts an async transcription job.
func (h *SpeechHandler) SubmitRecognition(c *gin.Context) {
	var req asrSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "audio is required")
		return
	}
	taskID, err := h.service.SubmitRecognition(c.Request.Context(), req.Audio, req.Format, req.Language)
	if err != nil {
		responses.HandleError(c, err, "failed to submit recognition")
		return
	}
	responses.OK(c, gin.H{"taskId": taskID})
}

// QueryRecognition reports an async transcription's status and text.
func (h *SpeechHandler) QueryRecognition(c *gin.Context) {
	var req asrQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "taskId is required")
		return
	}
	status, err := h.service.QueryRecognition(c.Request.Context(), req.TaskID)
	if err != nil {
		responses.HandleError(c, err, "failed to query recognition")
		return
	}
	// The web client switches its poll loop on statusCode.
	responses.OK(c, gin.H{
		"statusCode": status.Code,
		"message":    status.Message,
		"text":       status.Text,
	})
}

// Transcribe submits a transcription and blocks until the text is ready.
func (h *SpeechHandler) Transcribe(c *gin.Context) {
	var req asrSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "audio is required")
		return
	}
	text, err := h.service.Transcribe(c.Request.Context(), req.Audio, req.Format, req.Language)
	if err != nil {
		responses.HandleError(c, err, "transcription failed")
		return
	}
	responses.OK(c, gin.H{"text": text})
}

// CloneVoice uploads a voice sample and waits for training to finish.
func (h *SpeechHandler) CloneVoice(c *gin.Context) {
	speakerID := c.PostForm("speaker_id")
	if speakerID == "" {
		responses.HandleValidationError(c, "speaker_id is required")
		return
	}
	header, err := c.FormFile("audio")
	if err != nil {
		responses.HandleValidationError(c, "audio sample is required")
		return
	}
	if header.Size > maxVoiceSampleBytes {
		responses.HandleValidationError(c, "voice sample is too large")
		return
	}
	file, err := header.Open()
	if err != nil {
		responses.HandleValidationError(c, "unable to read voice sample")
		return
	}
	defer file.Close()
	sample, err := io.ReadAll(io.LimitReader(file, maxVoiceSampleBytes))
	if err != nil {
		responses.HandleValidationError(c, "unable to read voice sample")
		return
	}

	status, err := h.service.CloneVoice(c.Request.Context(), speakerID, sample, sampleFormat(header.Filename))
	if err != nil {
		h.log.Error().Err(err).Str("speaker_id", speakerID).Msg("voice clone failed")
		responses.HandleError(c, err, "voice clone failed")
		return
	}
	responses.OK(c, gin.H{
		"speaker_id": status.SpeakerID,
		"ready":      status.Ready(),
		"demo_audio": status.DemoAudio,
	})
}

// VoiceStatus reports the training state of a cloned voice.
func (h *SpeechHandler) VoiceStatus(c *gin.Context) {
	var req voiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "speaker_id is required")
		return
	}
	status, err := h.service.VoiceStatus(c.Request.Context(), req.SpeakerID)
	if err != nil {
		responses.HandleError(c, err, "failed to query voice status")
		return
	}
	responses.OK(c, gin.H{
		"speaker_id": status.SpeakerID,
		"state":      status.State,
		"ready":      status.Ready(),
		"demo_audio": status.DemoAudio,
	})
}

func sampleFormat(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[i+1:]
		}
	}
	return "wav"
}
