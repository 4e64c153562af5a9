// Package testsupport provides shared fixtures for package tests: a quiet
// logger, a temporary durable store, and a scripted render backend.
package testsupport

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"videostudio/internal/durable"
	"videostudio/internal/render"
	"videostudio/models"
)

// Logger returns a logrus logger that discards all output.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// MustOpenStore opens a SQLite durable store under a per-test temp directory
// and closes it when the test finishes.
func MustOpenStore(t *testing.T) *durable.SQLiteStore {
	t.Helper()
	store, err := durable.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open durable store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close durable store: %v", err)
		}
	})
	return store
}

// PollStep is one scripted answer from a ScriptedBackend.
type PollStep struct {
	Result render.PollResult
	Err    error
}

// ScriptedBackend plays back a fixed submit outcome and poll sequence so
// orchestrator tests can drive the state machine deterministically.
type ScriptedBackend struct {
	JobID     string
	SubmitErr error
	Steps     []PollStep

	// OnSubmit and OnPoll, when set, observe each backend call; OnPoll
	// receives the zero-based call index before the step is returned.
	OnSubmit func()
	OnPoll   func(call int)

	calls int
}

// Submit implements render.Backend.
func (b *ScriptedBackend) Submit(ctx context.Context, input models.RenderInput) (string, string, error) {
	if b.OnSubmit != nil {
		b.OnSubmit()
	}
	if b.SubmitErr != nil {
		return "", "", b.SubmitErr
	}
	return b.JobID, "", nil
}

// PollProgress implements render.Backend, replaying the scripted steps. The
// final step repeats if polled past the end of the script.
func (b *ScriptedBackend) PollProgress(ctx context.Context, jobID, hint string) (render.PollResult, error) {
	if b.OnPoll != nil {
		b.OnPoll(b.calls)
	}
	step := b.Steps[len(b.Steps)-1]
	if b.calls < len(b.Steps) {
		step = b.Steps[b.calls]
	}
	b.calls++
	return step.Result, step.Err
}

// FirstPollDelay implements render.Backend.
func (b *ScriptedBackend) FirstPollDelay() time.Duration {
	return 0
}

// Polls reports how many progress queries the backend has served.
func (b *ScriptedBackend) Polls() int {
	return b.calls
}
