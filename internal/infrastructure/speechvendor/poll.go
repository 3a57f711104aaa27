package speechvendor

import (
	"context"
	"fmt"
	"time"

	"shareboard/internal/utils/platformerrors"
)

// Vendor job status codes shared by the async recognition and training APIs.
const (
	statusCodeSuccess = "20000000"
	statusCodeQueued  = "20000001"
	statusCodeRunning = "20000002"
)

// JobStatus is one observation of an async vendor job.
type JobStatus struct {
	Code    string
	Message string
	Text    string
}

func (s JobStatus) done() bool {
	return s.Code == statusCodeSuccess
}

func (s JobStatus) inProgress() bool {
	return s.Code == statusCodeQueued || s.Code == statusCodeRunning
}

// pollJob drives an async vendor job to completion by calling fetch on a
// fixed interval until it reports success, fails, or the budget elapses.
// An unrecognized status code fails the job immediately rather than burning
// the rest of the budget on a state that will never resolve.
func (c *Client) pollJob(ctx context.Context, operation, resourceHint string, fetch func(context.Context) (JobStatus, error)) (JobStatus, error) {
	deadline := time.Now().Add(c.pollBudget)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		status, err := fetch(ctx)
		if err != nil {
			return JobStatus{}, err
		}

		switch {
		case status.done():
			c.log.Debug().
				Str("operation", operation).
				Int("attempts", attempt).
				Msg("async job completed")
			return status, nil
		case status.inProgress():
		default:
			return JobStatus{}, platformerrors.NewError(platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeVendorFailure,
				fmt.Sprintf("%s failed with status %s: %s",
					operation, status.Code, rewritePermissionMessage(status.Message, resourceHint)), nil)
		}

		if time.Now().After(deadline) {
			return JobStatus{}, platformerrors.NewError(platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeTimeout,
				fmt.Sprintf("%s did not complete within %s", operation, c.pollBudget), nil)
		}

		select {
		case <-ctx.Done():
			return JobStatus{}, platformerrors.NewError(platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeTimeout, operation+" cancelled while polling", ctx.Err())
		case <-ticker.C:
		}
	}
}
