package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"videostudio/models"
)

// ErrInvalidInput marks a render submission rejected before reaching the
// backend.
var ErrInvalidInput = errors.New("invalid render input")

// ErrAttemptInProgress is returned when a render attempt has already been
// claimed and has not reached a terminal state.
var ErrAttemptInProgress = errors.New("render attempt already in progress")

var validate = validator.New()

// Orchestrator tracks a single render attempt through
// init -> invoking -> rendering -> done | error. It does not guard against
// concurrent invocation; callers disable the trigger while an attempt is
// non-terminal.
type Orchestrator struct {
	backend Backend
	log     *logrus.Logger

	// PollInterval is the fixed delay between sequential progress polls.
	PollInterval time.Duration

	mu  sync.Mutex
	job models.RenderJob
}

// NewOrchestrator returns an orchestrator in the init state.
func NewOrchestrator(backend Backend, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		backend:      backend,
		log:          log,
		PollInterval: time.Second,
		job:          models.RenderJob{Status: models.RenderStateInit},
	}
}

// State returns a copy of the current attempt.
func (o *Orchestrator) State() models.RenderJob {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.job
}

// Begin claims the attempt, moving init to invoking. Exactly one caller wins
// the claim; everyone else gets ErrAttemptInProgress until Reset. Claiming
// before queueing the attempt closes the window in which a queued-but-idle
// attempt still reports init.
func (o *Orchestrator) Begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.job.Status != models.RenderStateInit {
		return ErrAttemptInProgress
	}
	o.job = models.RenderJob{Status: models.RenderStateInvoking}
	return nil
}

// Reset unconditionally returns to init, dismissing a finished or failed
// attempt so a retry can start. The backend is not notified; an in-flight job
// keeps running server-side.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.job = models.RenderJob{Status: models.RenderStateInit}
}

// ValidateInput rejects submissions missing duration, frame rate, or pixel
// dimensions. An empty overlay list is allowed; it renders a blank video and
// RenderMedia only warns about it.
func ValidateInput(input models.RenderInput) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// RenderMedia validates the input and drives the attempt to a terminal state,
// polling strictly sequentially: each poll is issued only after the previous
// one resolves, with a fixed delay in between. It blocks until done or error;
// run it on a background worker.
func (o *Orchestrator) RenderMedia(ctx context.Context, input models.RenderInput) error {
	if err := ValidateInput(input); err != nil {
		return err
	}
	if len(input.InputProps.Overlays) == 0 {
		o.log.WithField("composition_id", input.ID).Warn("Rendering a composition with no overlays")
	}

	// Pick up an attempt already claimed via Begin, or claim it here when
	// called directly.
	o.mu.Lock()
	switch o.job.Status {
	case models.RenderStateInit:
		o.job = models.RenderJob{Status: models.RenderStateInvoking}
	case models.RenderStateInvoking:
	default:
		o.mu.Unlock()
		return ErrAttemptInProgress
	}
	o.mu.Unlock()

	jobID, hint, err := o.backend.Submit(ctx, input)
	if err != nil {
		o.fail(nil, fmt.Sprintf("submit failed: %v", err))
		return err
	}

	o.transition(func(j *models.RenderJob) {
		j.JobID = &jobID
		j.Status = models.RenderStateRendering
		j.Progress = 0
	})
	o.log.WithFields(logrus.Fields{"job_id": jobID, "composition_id": input.ID}).Info("Render job submitted")

	if delay := o.backend.FirstPollDelay(); delay > 0 {
		if err := sleepCtx(ctx, delay); err != nil {
			o.fail(&jobID, err.Error())
			return err
		}
	}

	for {
		result, err := o.backend.PollProgress(ctx, jobID, hint)
		if err != nil {
			o.fail(&jobID, fmt.Sprintf("poll failed: %v", err))
			return err
		}

		switch result.Type {
		case PollDone:
			o.transition(func(j *models.RenderJob) {
				j.Status = models.RenderStateDone
				j.Progress = 1
				j.OutputURL = result.URL
				j.OutputSize = result.Size
			})
			o.log.WithFields(logrus.Fields{"job_id": jobID, "url": result.URL, "size": result.Size}).Info("Render job completed")
			return nil
		case PollError:
			o.fail(&jobID, result.Message)
			return fmt.Errorf("render job %s failed: %s", jobID, result.Message)
		case PollProgress:
			// Progress stays inside [0,1) until the done result arrives,
			// whatever the backend reports.
			progress := result.Progress
			if progress < 0 {
				progress = 0
			} else if progress >= 1 {
				progress = 0.99
			}
			o.transition(func(j *models.RenderJob) {
				j.Progress = progress
			})
		default:
			o.fail(&jobID, fmt.Sprintf("unexpected poll result type %q", result.Type))
			return fmt.Errorf("unexpected poll result type %q", result.Type)
		}

		if err := sleepCtx(ctx, o.PollInterval); err != nil {
			o.fail(&jobID, err.Error())
			return err
		}
	}
}

func (o *Orchestrator) transition(apply func(*models.RenderJob)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	apply(&o.job)
}

func (o *Orchestrator) fail(jobID *string, message string) {
	o.transition(func(j *models.RenderJob) {
		j.Status = models.RenderStateError
		j.JobID = jobID
		j.ErrorMessage = message
	})
	entry := o.log.WithField("error", message)
	if jobID != nil {
		entry = entry.WithField("job_id", *jobID)
	}
	entry.Error("Render attempt failed")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
