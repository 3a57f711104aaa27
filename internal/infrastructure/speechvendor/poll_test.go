package speechvendor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareboard/internal/utils/platformerrors"
)

func TestPollJobSucceedsAfterProgress(t *testing.T) {
	client := newTestClient(t, "")

	sequence := []string{statusCodeQueued, statusCodeRunning, statusCodeSuccess}
	var calls int
	status, err := client.pollJob(context.Background(), "test job", resourceBigASR,
		func(ctx context.Context) (JobStatus, error) {
			code := sequence[calls]
			calls++
			return JobStatus{Code: code, Text: "done"}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, statusCodeSuccess, status.Code)
	assert.Equal(t, "done", status.Text)
	assert.Equal(t, 3, calls)
}

func TestPollJobTimesOutOnStuckJob(t *testing.T) {
	client := newTestClient(t, "")

	_, err := client.pollJob(context.Background(), "test job", resourceBigASR,
		func(ctx context.Context) (JobStatus, error) {
			return JobStatus{Code: statusCodeRunning}, nil
		})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeTimeout))
}

func TestPollJobFailsFastOnUnrecognizedCode(t *testing.T) {
	client := newTestClient(t, "")

	var calls int
	_, err := client.pollJob(context.Background(), "test job", resourceBigASR,
		func(ctx context.Context) (JobStatus, error) {
			calls++
			return JobStatus{Code: "45000001", Message: "invalid audio"}, nil
		})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeVendorFailure))
	assert.Equal(t, 1, calls)
}

func TestPollJobRewritesPermissionMessage(t *testing.T) {
	client := newTestClient(t, "")

	_, err := client.pollJob(context.Background(), "test job", resourceBigASR,
		func(ctx context.Context) (JobStatus, error) {
			return JobStatus{Code: "45000002", Message: "requested resource not granted"}, nil
		})
	require.Error(t, err)
	assert.Contains(t, err.Error(), resourceBigASR)
	assert.Contains(t, err.Error(), "enable it in the vendor console")
}

func TestPollJobStopsOnContextCancel(t *testing.T) {
	client := newTestClient(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.pollJob(ctx, "test job", resourceBigASR,
		func(ctx context.Context) (JobStatus, error) {
			return JobStatus{Code: statusCodeRunning}, nil
		})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeTimeout))
}

func TestTrainingStateTranslation(t *testing.T) {
	assert.Equal(t, statusCodeSuccess, trainingStateToJobCode(trainingStateSuccess))
	assert.Equal(t, statusCodeSuccess, trainingStateToJobCode(trainingStateActive))
	assert.Equal(t, statusCodeRunning, trainingStateToJobCode(trainingStateTraining))
	assert.Equal(t, "3", trainingStateToJobCode(trainingStateFailed))
}
