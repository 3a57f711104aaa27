package speechvendor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"resty.dev/v3"

	"shareboard/internal/infrastructure/metrics"
	"shareboard/internal/utils/platformerrors"
)

const (
	recognitionSubmitPath = "/api/v3/auc/bigmodel/submit"
	recognitionQueryPath  = "/api/v3/auc/bigmodel/query"

	resourceBigASR = "volc.bigasr.auc"
)

// RecognitionRequest points the vendor at an audio payload it can fetch.
type RecognitionRequest struct {
	AudioURL string
	Format   string // mp3, wav, ogg
	Language string // optional hint, e.g. zh-CN
}

type recognitionResult struct {
	Result struct {
		Text string `json:"text"`
	} `json:"result"`
}

// SubmitRecognition starts an async transcription job and returns its id.
func (c *Client) SubmitRecognition(ctx context.Context, req RecognitionRequest) (string, error) {
	if req.AudioURL == "" {
		return "", platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeValidation, "audio url is required", nil)
	}

	requestID := uuid.NewString()
	request := map[string]any{
		"model_name":  "bigmodel",
		"enable_itn":  true,
		"enable_punc": true,
	}
	if req.Language != "" {
		request["language"] = req.Language
	}
	body := map[string]any{
		"user": map[string]any{
			"uid": "shareboard",
		},
		"audio": map[string]any{
			"url":    req.AudioURL,
			"format": req.Format,
		},
		"request": request,
	}

	resp, err := c.recognitionRequest(ctx, requestID).
		SetBody(body).
		Post(c.endpoint(recognitionSubmitPath))
	if err != nil {
		return "", platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVendorHTTP, "recognition submit failed", err)
	}

	code := resp.Header().Get("X-Api-Status-Code")
	if code != statusCodeSuccess {
		message := rewritePermissionMessage(resp.Header().Get("X-Api-Message"), resourceBigASR)
		return "", platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVendorFailure,
			fmt.Sprintf("recognition submit rejected with status %s: %s", code, message), nil)
	}
	return requestID, nil
}

// QueryRecognition fetches the current status of a transcription job.
func (c *Client) QueryRecognition(ctx context.Context, jobID string) (JobStatus, error) {
	var result recognitionResult
	resp, err := c.recognitionRequest(ctx, jobID).
		SetBody(map[string]any{}).
		SetResult(&result).
		Post(c.endpoint(recognitionQueryPath))
	if err != nil {
		return JobStatus{}, platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeVendorHTTP, "recognition query failed", err)
	}

	return JobStatus{
		Code:    resp.Header().Get("X-Api-Status-Code"),
		Message: resp.Header().Get("X-Api-Message"),
		Text:    result.Result.Text,
	}, nil
}

// Recognize submits a transcription job and polls it until the text is ready.
func (c *Client) Recognize(ctx context.Context, req RecognitionRequest) (string, error) {
	jobID, err := c.SubmitRecognition(ctx, req)
	if err != nil {
		metrics.RecordVendorCall("recognize", "error")
		return "", err
	}

	status, err := c.pollJob(ctx, "speech recognition", resourceBigASR,
		func(ctx context.Context) (JobStatus, error) {
			return c.QueryRecognition(ctx, jobID)
		})
	if err != nil {
		metrics.RecordVendorCall("recognize", "error")
		return "", err
	}
	metrics.RecordVendorCall("recognize", "success")
	return status.Text, nil
}

func (c *Client) recognitionRequest(ctx context.Context, requestID string) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Api-App-Key", c.appID).
		SetHeader("X-Api-Access-Key", c.accessToken).
		SetHeader("X-Api-Resource-Id", resourceBigASR).
		SetHeader("X-Api-Request-Id", requestID)
}
