package convert

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"shareboard/internal/domain/content"
	"shareboard/internal/infrastructure/metrics"
	"shareboard/internal/utils/platformerrors"
)

// ContentService is the slice of the content domain the conversion pipeline
// needs: source lookup and publishing the derived record.
type ContentService interface {
	GetActive(ctx context.Context, id string) (*content.ContentRecord, error)
	Publish(ctx context.Context, rec *content.ContentRecord) error
}

// PayloadStorage resolves public upload paths to disk and names new outputs.
type PayloadStorage interface {
	AbsolutePath(publicPath string) (string, bool)
	NewName(ext string) string
	Stat(publicPath string) (int64, error)
	Remove(publicPath string) error
}

// Transcoder runs the ffmpeg conversions.
type Transcoder interface {
	OptimizeVideo(ctx context.Context, input, output string) error
	AudioToVideo(ctx context.Context, input, output string) error
	ExtractAudio(ctx context.Context, input, output string) error
}

// Service turns an existing media record into a derived one: web-friendly
// video, audio wrapped in a still video, or the audio track of a video. The
// source record is never modified; the derived record carries provenance
// pointing back at the source payload.
type Service struct {
	contents   ContentService
	storage    PayloadStorage
	transcoder Transcoder
	log        zerolog.Logger
}

func NewService(contents ContentService, storage PayloadStorage, transcoder Transcoder, log zerolog.Logger) *Service {
	return &Service{
		contents:   contents,
		storage:    storage,
		transcoder: transcoder,
		log:        log.With().Str("component", "convert-service").Logger(),
	}
}

// OptimizeVideo re-encodes a video record for web playback and publishes the
// result as a new record.
func (s *Service) OptimizeVideo(ctx context.Context, id string) (*content.ContentRecord, error) {
	return s.convert(ctx, conversion{
		id:           id,
		operation:    "optimize_video",
		sourceType:   content.TypeVideo,
		outputExt:    ".mp4",
		outputType:   content.TypeVideo,
		outputMime:   "video/mp4",
		renameOutput: func(src string) string { return "optimized-" + withExt(src, ".mp4") },
		run:          s.transcoder.OptimizeVideo,
	})
}

// AudioToVideo wraps an audio record in a black still-image MP4, which some
// chat apps require for inline playback.
func (s *Service) AudioToVideo(ctx context.Context, id string) (*content.ContentRecord, error) {
	return s.convert(ctx, conversion{
		id:           id,
		operation:    "audio_to_video",
		sourceType:   content.TypeAudio,
		outputExt:    ".mp4",
		outputType:   content.TypeVideo,
		outputMime:   "video/mp4",
		renameOutput: func(src string) string { return withExt(src, ".mp4") },
		run:          s.transcoder.AudioToVideo,
	})
}

// ExtractAudio pulls the audio track out of a video record as MP3.
func (s *Service) ExtractAudio(ctx context.Context, id string) (*content.ContentRecord, error) {
	return s.convert(ctx, conversion{
		id:           id,
		operation:    "extract_audio",
		sourceType:   content.TypeVideo,
		outputExt:    ".mp3",
		outputType:   content.TypeAudio,
		outputMime:   "audio/mpeg",
		renameOutput: func(src string) string { return withExt(src, ".mp3") },
		run:          s.transcoder.ExtractAudio,
	})
}

type conversion struct {
	id           string
	operation    string
	sourceType   string
	outputExt    string
	outputType   string
	outputMime   string
	renameOutput func(sourceFilename string) string
	run          func(ctx context.Context, input, output string) error
}

func (s *Service) convert(ctx context.Context, c conversion) (*content.ContentRecord, error) {
	src, err := s.contents.GetActive(ctx, c.id)
	if err != nil {
		return nil, err
	}
	if src.Type != c.sourceType {
		return nil, platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"content is not of type "+c.sourceType, nil)
	}

	input, ok := s.storage.AbsolutePath(src.Data)
	if !ok {
		return nil, platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, "source payload is missing", nil)
	}

	outputPublic := s.storage.NewName(c.outputExt)
	output, _ := s.storage.AbsolutePath(outputPublic)

	if err := c.run(ctx, input, output); err != nil {
		metrics.RecordTranscode(c.operation, "error")
		if removeErr := s.storage.Remove(outputPublic); removeErr != nil {
			s.log.Debug().Err(removeErr).Str("path", outputPublic).Msg("no partial output to unlink")
		}
		return nil, err
	}

	size, err := s.storage.Stat(outputPublic)
	if err != nil {
		metrics.RecordTranscode(c.operation, "error")
		return nil, platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "converted payload is missing", err)
	}

	derived := &content.ContentRecord{
		Type:     c.outputType,
		Text:     src.Text,
		Data:     outputPublic,
		Filename: c.renameOutput(src.Filename),
		Size:     size,
		Mimetype: c.outputMime,
		Original: &content.ConversionProvenance{
			OriginalData:     src.Data,
			OriginalFilename: src.Filename,
			OriginalSize:     src.Size,
			OriginalMimetype: src.Mimetype,
		},
	}
	if err := s.contents.Publish(ctx, derived); err != nil {
		if removeErr := s.storage.Remove(outputPublic); removeErr != nil {
			s.log.Error().Err(removeErr).Str("path", outputPublic).Msg("failed to unlink orphaned conversion output")
		}
		return nil, err
	}

	metrics.RecordTranscode(c.operation, "success")
	s.log.Info().
		Str("operation", c.operation).
		Str("source_id", src.ID).
		Str("derived_id", derived.ID).
		Msg("conversion published")
	return derived, nil
}

// withExt swaps the extension on a filename, falling back to a bare name
// when the source had none.
func withExt(filename, ext string) string {
	if filename == "" {
		return "converted" + ext
	}
	if idx := strings.LastIndex(filename, "."); idx > 0 {
		return filename[:idx] + ext
	}
	return filename + ext
}
