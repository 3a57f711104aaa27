package speechvendor

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"resty.dev/v3"

	"shareboard/internal/infrastructure/metrics"
	"shareboard/internal/utils/platformerrors"
)

const (
	voiceUploadPath = "/api/v1/mega_tts/audio/upload"
	voiceStatusPath = "/api/v1/mega_tts/status"

	resourceVoiceClone = "volc.megatts.voiceclone"
)

// Vendor training states for a cloned voice.
const (
	trainingStateTraining = 1
	trainingStateSuccess  = 2
	trainingStateFailed   = 3
	trainingStateActive   = 4
)

// CloneRequest carries the sample audio used to train a cloned voice.
type CloneRequest struct {
	SpeakerID string
	Audio     []byte
	Format    string // wav, mp3, m4a
}

// CloneStatus is the vendor's view of a training job.
type CloneStatus struct {
	SpeakerID string
	State     int
	DemoAudio string
	Message   string
}

// Ready reports whether the cloned voice can be used for synthesis.
func (s CloneStatus) Ready() bool {
	return s.State == trainingStateSuccess || s.State == trainingStateActive
}

// UploadVoice submits sample audio to train a cloned voice under the given
// speaker id. Training continues asynchronously after the upload returns.
func (c *Client) UploadVoice(ctx context.Context, req CloneRequest) error {
	if req.SpeakerID == "" {
		return platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeValidation, "speaker id is required", nil)
	}
	if len(req.Audio) == 0 {
		return platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeValidation, "sample audio is required", nil)
	}

	body := map[string]any{
		"appid":      c.appID,
		"speaker_id": req.SpeakerID,
		"audios": []map[string]any{
			{
				"audio_bytes":  base64.StdEncoding.EncodeToString(req.Audio),
				"audio_format": req.Format,
			},
		},
		"source":     2,
		"model_type": 1,
	}

	var result struct {
		BaseResp struct {
			StatusCode    int64  `json:"StatusCode"`
			StatusMessage string `json:"StatusMessage"`
		} `json:"BaseResp"`
	}
	resp, err := c.cloneRequest(ctx).
		SetBody(body).
		SetResult(&result).
		Post(c.endpoint(voiceUploadPath))
	if err != nil {
		metrics.RecordVendorCall("voice_clone_upload", "error")
		return platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVendorHTTP, "voice sample upload failed", err)
	}
	if resp.IsError() || result.BaseResp.StatusCode != 0 {
		metrics.RecordVendorCall("voice_clone_upload", "error")
		message := rewritePermissionMessage(result.BaseResp.StatusMessage, resourceVoiceClone)
		return platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVendorFailure,
			fmt.Sprintf("voice sample upload rejected: %s", message), nil)
	}
	metrics.RecordVendorCall("voice_clone_upload", "success")
	return nil
}

// QueryVoiceStatus fetches the training state of a cloned voice.
func (c *Client) QueryVoiceStatus(ctx context.Context, speakerID string) (CloneStatus, error) {
	var result struct {
		SpeakerID string `json:"speaker_id"`
		Status    int    `json:"status"`
		DemoAudio string `json:"demo_audio"`
		BaseResp  struct {
			StatusCode    int64  `json:"StatusCode"`
			StatusMessage string `json:"StatusMessage"`
		} `json:"BaseResp"`
	}
	resp, err := c.cloneRequest(ctx).
		SetBody(map[string]any{
			"appid":      c.appID,
			"speaker_id": speakerID,
		}).
		SetResult(&result).
		Post(c.endpoint(voiceStatusPath))
	if err != nil {
		return CloneStatus{}, platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVendorHTTP, "voice status query failed", err)
	}
	if resp.IsError() || result.BaseResp.StatusCode != 0 {
		message := rewritePermissionMessage(result.BaseResp.StatusMessage, resourceVoiceClone)
		return CloneStatus{}, platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVendorFailure,
			fmt.Sprintf("voice status query rejected: %s", message), nil)
	}

	return CloneStatus{
		SpeakerID: result.SpeakerID,
		State:     result.Status,
		DemoAudio: result.DemoAudio,
		Message:   result.BaseResp.StatusMessage,
	}, nil
}

// WaitForTraining polls a cloned voice until training finishes. It shares
// the async poll loop with recognition by translating training states into
// job status codes.
func (c *Client) WaitForTraining(ctx context.Context, speakerID string) (CloneStatus, error) {
	var last CloneStatus
	_, err := c.pollJob(ctx, "voice training", resourceVoiceClone,
		func(ctx context.Context) (JobStatus, error) {
			status, err := c.QueryVoiceStatus(ctx, speakerID)
			if err != nil {
				return JobStatus{}, err
			}
			last = status
			return JobStatus{
				Code:    trainingStateToJobCode(status.State),
				Message: status.Message,
			}, nil
		})
	if err != nil {
		metrics.RecordVendorCall("voice_clone_train", "error")
		return CloneStatus{}, err
	}
	metrics.RecordVendorCall("voice_clone_train", "success")
	return last, nil
}

func trainingStateToJobCode(state int) string {
	switch state {
	case trainingStateSuccess, trainingStateActive:
		return statusCodeSuccess
	case trainingStateTraining:
		return statusCodeRunning
	default:
		return strconv.Itoa(state)
	}
}

func (c *Client) cloneRequest(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer;"+c.accessToken).
		SetHeader("Resource-Id", resourceVoiceClone)
}
