// Package jobs holds the background work units the dispatcher executes.
package jobs

import (
	"context"
	"fmt"

	"videostudio/internal/render"
	"videostudio/models"
)

// RenderAttemptJob drives one render attempt end to end: submit, then the
// sequential polling loop, on a single worker goroutine.
type RenderAttemptJob struct {
	ProjectID    string
	Input        models.RenderInput
	Orchestrator *render.Orchestrator
}

func NewRenderAttemptJob(projectID string, input models.RenderInput, orch *render.Orchestrator) *RenderAttemptJob {
	return &RenderAttemptJob{
		ProjectID:    projectID,
		Input:        input,
		Orchestrator: orch,
	}
}

// ID returns the job identifier used in dispatcher logs.
func (j *RenderAttemptJob) ID() string {
	return "render:" + j.ProjectID
}

// Execute runs the attempt. Errors are already recorded on the orchestrator
// state; the returned error is for the dispatcher's log only.
func (j *RenderAttemptJob) Execute(ctx context.Context) error {
	if err := j.Orchestrator.RenderMedia(ctx, j.Input); err != nil {
		return fmt.Errorf("render attempt for project %s: %w", j.ProjectID, err)
	}
	return nil
}
