// Package render drives server-side render jobs: a state machine over one
// attempt at a time, parameterized by a backend strategy that submits the
// composition and reports progress.
package render

import (
	"context"
	"time"

	"videostudio/models"
)

// PollResultType discriminates the outcome of one progress query.
type PollResultType string

const (
	PollProgress PollResultType = "progress"
	PollDone     PollResultType = "done"
	PollError    PollResultType = "error"
)

// PollResult is the discriminated union a backend returns while a job runs:
// progress in [0,1), a finished artifact, or an explicit job failure.
type PollResult struct {
	Type     PollResultType
	Progress float64
	URL      string
	Size     int64
	Message  string
}

// Backend is one render service strategy. Submit dispatches a composition and
// returns the backend-assigned job id plus an optional storage hint
// (bucket/region) that later polls must echo back.
type Backend interface {
	Submit(ctx context.Context, input models.RenderInput) (jobID, hint string, err error)
	PollProgress(ctx context.Context, jobID, hint string) (PollResult, error)

	// FirstPollDelay is the grace period before the first poll, giving the
	// backend time to warm the job up. Zero for backends that register jobs
	// synchronously.
	FirstPollDelay() time.Duration
}
