package speechvendor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"shareboard/internal/infrastructure/metrics"
	"shareboard/internal/utils/platformerrors"
)

const (
	synthesizePath = "/api/v3/tts/unidirectional"

	// Bound on how much of an error body is drained for diagnostics.
	errorBodyLimit = 4 * 1024
	// Bound on the last-object dump carried inside an EmptyAudio error.
	diagnosticDumpLimit = 300

	readChunkSize = 4 * 1024
)

// errSpeedRejected marks a vendor refusal of the speed parameter encoding.
// It drives the bounded ratio -> rate -> omit degrade ladder and never
// escapes Synthesize.
var errSpeedRejected = errors.New("speed parameter rejected by vendor")

type speedMode int

const (
	speedModeRatio speedMode = iota
	speedModeRate
	speedModeOmit
)

// SynthesizeRequest describes one text-to-speech call.
type SynthesizeRequest struct {
	Text         string
	Speaker      string
	Encoding     string // mp3, wav, pcm
	SampleRate   int
	Emotion      string
	EmotionScale float64
	SpeedRatio   float64 // 1.0 is normal speed; 0 means unset
}

// Synthesize turns text into one concatenated audio buffer. The request is
// retried over the ordered resource-id candidate list, but only when the
// failure is a recognized resource mismatch; any other error aborts
// immediately without trying further candidates.
func (c *Client) Synthesize(ctx context.Context, req SynthesizeRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeValidation, "synthesis text is required", nil)
	}

	var lastErr error
	for _, resourceID := range resourceCandidates(req.Speaker) {
		audio, err := c.synthesizeWithSpeedFallback(ctx, req, resourceID)
		if err == nil {
			metrics.RecordVendorCall("synthesize", "success")
			return audio, nil
		}
		lastErr = err
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeResourceMismatch) {
			break
		}
		c.log.Warn().
			Str("resource_id", resourceID).
			Str("speaker", req.Speaker).
			Msg("resource id mismatched with speaker, trying next candidate")
	}
	metrics.RecordVendorCall("synthesize", "error")
	return nil, lastErr
}

// synthesizeWithSpeedFallback degrades the speed encoding when the vendor
// rejects it: ratio-based, then rate-based, then no speed at all. Fixed three
// attempts, not open-ended retry.
func (c *Client) synthesizeWithSpeedFallback(ctx context.Context, req SynthesizeRequest, resourceID string) ([]byte, error) {
	modes := []speedMode{speedModeRatio, speedModeRate, speedModeOmit}
	if req.SpeedRatio == 0 {
		modes = []speedMode{speedModeOmit}
	}

	var lastErr error
	for _, mode := range modes {
		audio, err := c.synthesizeOnce(ctx, req, resourceID, mode)
		if err == nil {
			return audio, nil
		}
		lastErr = err
		if !errors.Is(err, errSpeedRejected) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) synthesizeOnce(ctx context.Context, req SynthesizeRequest, resourceID string, mode speedMode) ([]byte, error) {
	body := c.synthesizeBody(req, mode)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Api-App-Key", c.appID).
		SetHeader("X-Api-Access-Key", c.accessToken).
		SetHeader("X-Api-Resource-Id", resourceID).
		SetHeader("X-Api-Request-Id", uuid.NewString()).
		SetBody(body).
		SetDoNotParseResponse(true).
		Post(c.endpoint(synthesizePath))
	if err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVendorHTTP, "synthesis request failed", err)
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return nil, platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVendorHTTP, "synthesis request failed: empty response body", nil)
	}
	defer resp.RawResponse.Body.Close()

	if resp.StatusCode() >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.RawResponse.Body, errorBodyLimit))
		return nil, c.classifySynthesisFailure(resp.StatusCode(), string(excerpt))
	}

	parser := newAudioStreamParser()
	buf := make([]byte, readChunkSize)
	for {
		n, readErr := resp.RawResponse.Body.Read(buf)
		if n > 0 {
			parser.Feed(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, platformerrors.NewError(platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeVendorHTTP, "synthesis stream read failed", readErr)
		}
	}
	parser.Flush()

	audio := parser.Audio()
	if len(audio) == 0 {
		return nil, c.classifyEmptyStream(parser.LastObject())
	}
	return audio, nil
}

func (c *Client) synthesizeBody(req SynthesizeRequest, mode speedMode) map[string]any {
	audio := map[string]any{
		"voice_type": req.Speaker,
		"encoding":   req.Encoding,
	}
	if req.SampleRate > 0 {
		audio["rate"] = req.SampleRate
	}
	if req.Emotion != "" {
		audio["emotion"] = req.Emotion
		if req.EmotionScale > 0 {
			audio["emotion_scale"] = req.EmotionScale
		}
	}
	switch mode {
	case speedModeRatio:
		audio["speed_ratio"] = req.SpeedRatio
	case speedModeRate:
		// Alternate encoding: percentage offset from normal speed.
		audio["speech_rate"] = int((req.SpeedRatio - 1.0) * 100)
	case speedModeOmit:
	}

	return map[string]any{
		"app": map[string]any{
			"appid": c.appID,
			"token": c.accessToken,
		},
		"user": map[string]any{
			"uid": "shareboard",
		},
		"audio": audio,
		"req_params": map[string]any{
			"text": req.Text,
		},
	}
}

// classifySynthesisFailure maps a non-2xx response onto the typed taxonomy.
// Mismatch and speed signatures are recognized here too, since the vendor
// reports them with an error status on some API versions.
func (c *Client) classifySynthesisFailure(status int, body string) error {
	var parsed struct {
		Code    int64  `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal([]byte(body), &parsed)
	message := parsed.Message
	if message == "" {
		message = body
	}

	if isResourceMismatchSignature(parsed.Code, message) {
		return platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeResourceMismatch, "resource id mismatched with speaker", nil)
	}
	if isSpeedRejectedSignature(message) {
		return platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVendorHTTP, "vendor rejected speed parameter", errSpeedRejected)
	}
	return platformerrors.NewError(platformerrors.LayerInfrastructure,
		platformerrors.ErrorTypeVendorHTTP,
		fmt.Sprintf("vendor returned status %d: %s", status, truncate(body, diagnosticDumpLimit)), nil)
}

// classifyEmptyStream decides why a completed stream produced zero audio
// bytes, using the last JSON object the parser saw.
func (c *Client) classifyEmptyStream(lastObject map[string]any) error {
	code, message := vendorErrorFields(lastObject)

	if isResourceMismatchSignature(code, message) {
		return platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeResourceMismatch, "resource id mismatched with speaker", nil)
	}
	if isSpeedRejectedSignature(message) {
		return platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVendorHTTP, "vendor rejected speed parameter", errSpeedRejected)
	}

	dump := "(no parsed frames)"
	if lastObject != nil {
		if encoded, err := json.Marshal(lastObject); err == nil {
			dump = truncate(string(encoded), diagnosticDumpLimit)
		}
	}
	return platformerrors.NewError(platformerrors.LayerInfrastructure,
		platformerrors.ErrorTypeEmptyAudio,
		"synthesis stream produced no audio; last frame: "+dump, nil)
}

// vendorErrorFields pulls the error code and message out of a parsed frame,
// looking both at the top level and under "error".
func vendorErrorFields(obj map[string]any) (int64, string) {
	if obj == nil {
		return 0, ""
	}
	code := numberField(obj, "code")
	message := stringField(obj, "message")
	if nested, ok := obj["error"].(map[string]any); ok {
		if code == 0 {
			code = numberField(nested, "code")
		}
		if message == "" {
			message = stringField(nested, "message")
		}
	}
	return code, message
}

func numberField(obj map[string]any, key string) int64 {
	switch v := obj[key].(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
