package transcoder

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shareboard/internal/config"
	"shareboard/internal/infrastructure/metrics"
	"shareboard/internal/utils/platformerrors"
)

// Transcoder wraps the external ffmpeg binary. Purely request/response: a
// failed run reports stderr and leaves no record behind; there are no retries.
type Transcoder struct {
	binary  string
	timeout time.Duration
	log     zerolog.Logger
}

func New(cfg *config.Config, log zerolog.Logger) *Transcoder {
	return &Transcoder{
		binary:  cfg.FFmpegBinary,
		timeout: cfg.TranscodeTimeout,
		log:     log.With().Str("component", "transcoder").Logger(),
	}
}

// OptimizeVideo re-encodes a video to broadly compatible H.264/AAC MP4.
func (t *Transcoder) OptimizeVideo(ctx context.Context, input, output string) error {
	return t.run(ctx, "optimize", optimizeVideoArgs(input, output))
}

// AudioToVideo renders an audio file onto a black background video, ending
// with the shorter stream (the audio).
func (t *Transcoder) AudioToVideo(ctx context.Context, input, output string) error {
	return t.run(ctx, "audio_to_video", audioToVideoArgs(input, output))
}

// ExtractAudio strips the video stream and encodes the audio track as MP3.
func (t *Transcoder) ExtractAudio(ctx context.Context, input, output string) error {
	return t.run(ctx, "extract_audio", extractAudioArgs(input, output))
}

func (t *Transcoder) run(ctx context.Context, operation string, args []string) error {
	runCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(runCtx, t.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		metrics.RecordTranscode(operation, "error")
		return platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternalTool,
			fmt.Sprintf("ffmpeg %s failed: %s", operation, strings.TrimSpace(string(output))), err)
	}

	metrics.RecordTranscode(operation, "success")
	t.log.Debug().
		Str("operation", operation).
		Dur("took", time.Since(start)).
		Msg("ffmpeg run finished")
	return nil
}

func optimizeVideoArgs(input, output string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", input,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		output,
	}
}

func audioToVideoArgs(input, output string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "lavfi",
		"-i", "color=c=black:s=640x480:r=25",
		"-i", input,
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-shortest",
		output,
	}
}

func extractAudioArgs(input, output string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", input,
		"-vn",
		"-c:a", "libmp3lame",
		"-q:a", "2",
		output,
	}
}
