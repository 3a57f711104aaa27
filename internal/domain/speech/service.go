package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shareboard/internal/domain/content"
	"shareboard/internal/infrastructure/speechvendor"
	"shareboard/internal/utils/platformerrors"
)

const defaultVoice = "zh_female_cancan_mars_bigtts"

// ContentService publishes synthesized audio into the board feed.
type ContentService interface {
	Publish(ctx context.Context, rec *content.ContentRecord) error
}

// PayloadStorage persists synthesized audio under the upload directory.
type PayloadStorage interface {
	Save(originalFilename string, body io.Reader) (string, int64, error)
}

// Vendor is the speech vendor surface the service consumes.
type Vendor interface {
	Synthesize(ctx context.Context, req speechvendor.SynthesizeRequest) ([]byte, error)
	SubmitRecognition(ctx context.Context, req speechvendor.RecognitionRequest) (string, error)
	QueryRecognition(ctx context.Context, jobID string) (speechvendor.JobStatus, error)
	Recognize(ctx context.Context, req speechvendor.RecognitionRequest) (string, error)
	UploadVoice(ctx context.Context, req speechvendor.CloneRequest) error
	QueryVoiceStatus(ctx context.Context, speakerID string) (speechvendor.CloneStatus, error)
	WaitForTraining(ctx context.Context, speakerID string) (speechvendor.CloneStatus, error)
}

// SynthesizeInput is a text-to-speech request from the API surface.
type SynthesizeInput struct {
	Text         string
	VoiceType    string
	SpeedRatio   float64
	Emotion      string
	EmotionScale float64
}

// Service orchestrates speech features: synthesized audio lands in the feed
// as an audio record, recognition and voice cloning pass through to the
// vendor with server-side polling where a blocking answer is wanted.
type Service struct {
	contents ContentService
	storage  PayloadStorage
	vendor   Vendor
	log      zerolog.Logger
}

func NewService(contents ContentService, storage PayloadStorage, vendor Vendor, log zerolog.Logger) *Service {
	return &Service{
		contents: contents,
		storage:  storage,
		vendor:   vendor,
		log:      log.With().Str("component", "speech-service").Logger(),
	}
}

// Synthesize produces MP3 audio for the text and publishes it as a new
// audio record whose caption is the spoken text.
func (s *Service) Synthesize(ctx context.Context, input SynthesizeInput) (*content.ContentRecord, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "synthesis text is required", nil)
	}
	voice := input.VoiceType
	if voice == "" {
		voice = defaultVoice
	}

	audio, err := s.vendor.Synthesize(ctx, speechvendor.SynthesizeRequest{
		Text:         text,
		Speaker:      voice,
		Encoding:     "mp3",
		SpeedRatio:   input.SpeedRatio,
		Emotion:      input.Emotion,
		EmotionScale: input.EmotionScale,
	})
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("tts-%s.mp3", time.Now().Format("20060102-150405"))
	publicPath, size, err := s.storage.Save(filename, bytes.NewReader(audio))
	if err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to store synthesized audio", err)
	}

	rec := &content.ContentRecord{
		Type:     content.TypeAudio,
		Text:     text,
		Data:     publicPath,
		Filename: filename,
		Size:     size,
		Mimetype: "audio/mpeg",
	}
	if err := s.contents.Publish(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("id", rec.ID).
		Str("voice", voice).
		Int("bytes", len(audio)).
		Msg("synthesized audio published")
	return rec, nil
}

// SubmitRecognition starts an async transcription and returns its task id
// for the caller to poll via QueryRecognition.
func (s *Service) SubmitRecognition(ctx context.Context, audioURL, format, language string) (string, error) {
	return s.vendor.SubmitRecognition(ctx, speechvendor.RecognitionRequest{
		AudioURL: audioURL,
		Format:   format,
		Language: language,
	})
}

// QueryRecognition reports an async transcription's current status.
func (s *Service) QueryRecognition(ctx context.Context, taskID string) (speechvendor.JobStatus, error) {
	if taskID == "" {
		return speechvendor.JobStatus{}, platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "task id is required", nil)
	}
	return s.vendor.QueryRecognition(ctx, taskID)
}

// Transcribe submits a transcription and blocks until the text is ready,
// polling the vendor on the configured cadence.
func (s *Service) Transcribe(ctx context.Context, audioURL, format, language string) (string, error) {
	return s.vendor.Recognize(ctx, speechvendor.RecognitionRequest{
		AudioURL: audioURL,
		Format:   format,
		Language: language,
	})
}

// CloneVoice uploads sample audio and waits for the cloned voice to finish
// training, so the returned speaker id is immediately usable for synthesis.
func (s *Service) CloneVoice(ctx context.Context, speakerID string, audio []byte, format string) (speechvendor.CloneStatus, error) {
	if err := s.vendor.UploadVoice(ctx, speechvendor.CloneRequest{
		SpeakerID: speakerID,
		Audio:     audio,
		Format:    format,
	}); err != nil {
		return speechvendor.CloneStatus{}, err
	}
	return s.vendor.WaitForTraining(ctx, speakerID)
}

// VoiceStatus reports the training state of a cloned voice.
func (s *Service) VoiceStatus(ctx context.Context, speakerID string) (speechvendor.CloneStatus, error) {
	if speakerID == "" {
		return speechvendor.CloneStatus{}, platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "speaker id is required", nil)
	}
	return s.vendor.QueryVoiceStatus(ctx, speakerID)
}
