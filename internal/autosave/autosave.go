// Package autosave periodically persists editor state against crashes and
// offers the stored snapshot back for recovery on the next session.
package autosave

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"videostudio/internal/durable"
	"videostudio/models"
)

// DefaultInterval is the fixed autosave period.
const DefaultInterval = 5 * time.Second

// ErrNoAutosave is returned by Recover when no record exists for the project.
var ErrNoAutosave = errors.New("no autosave record")

// Saver owns autosave for one project: a diffed periodic save loop, a manual
// save path, and the once-per-session recovery check.
type Saver struct {
	store     durable.Store
	projectID string
	interval  time.Duration
	log       *logrus.Logger

	// OnSave, when set, is notified with the save timestamp after each
	// successful write.
	OnSave func(time.Time)

	mu        sync.Mutex
	lastSaved []byte
	checked   bool
	loaded    bool
}

// NewSaver creates a saver for the project. A non-positive interval falls
// back to the default.
func NewSaver(store durable.Store, projectID string, interval time.Duration, log *logrus.Logger) *Saver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Saver{store: store, projectID: projectID, interval: interval, log: log}
}

// Run drives the periodic save loop until ctx is cancelled. current returns
// the serialized editor state; identical consecutive serializations are
// skipped, and nothing is written until MarkLoaded (or SaveNow) completes the
// first load cycle.
func (s *Saver) Run(ctx context.Context, current func() ([]byte, error)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			blob, err := current()
			if err != nil {
				s.log.WithField("error", err.Error()).Warn("Autosave serialization failed")
				continue
			}
			s.SaveIfChanged(ctx, blob)
		}
	}
}

// SaveIfChanged persists blob only when it differs from the last saved
// serialization. Nothing is written before the first load cycle completes:
// a fresh session must not overwrite a crash record the user has not yet
// recovered or discarded. Storage failures are logged and swallowed so
// editing stays usable. It reports whether a write happened.
func (s *Saver) SaveIfChanged(ctx context.Context, blob []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return false
	}
	if bytes.Equal(blob, s.lastSaved) {
		return false
	}
	return s.writeLocked(ctx, blob, false)
}

// SaveNow persists immediately, bypassing the equality check. A manual save
// is a user decision, so it also completes the first load cycle. The returned
// error lets a manual-save action surface the failure; the periodic path
// never sees it.
func (s *Saver) SaveNow(ctx context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = true
	if !s.writeLocked(ctx, blob, true) {
		return errors.New("autosave write failed")
	}
	return nil
}

func (s *Saver) writeLocked(ctx context.Context, blob []byte, manual bool) bool {
	now := time.Now().UTC()
	if err := s.store.SaveAutosave(ctx, s.projectID, blob, now); err != nil {
		s.log.WithFields(logrus.Fields{"project_id": s.projectID, "error": err.Error()}).Warn("Autosave write failed")
		return false
	}

	s.lastSaved = make([]byte, len(blob))
	copy(s.lastSaved, blob)

	s.log.WithFields(logrus.Fields{"project_id": s.projectID, "manual": manual}).Debug("Editor state saved")
	if s.OnSave != nil {
		s.OnSave(now)
	}
	return true
}

// CheckRecovery reports a prior autosave record at most once per session, and
// only before the first load cycle completes. Both guards keep the recovery
// prompt from reappearing after the user has already decided.
func (s *Saver) CheckRecovery(ctx context.Context) (*models.AutosaveRecord, bool) {
	s.mu.Lock()
	if s.checked || s.loaded {
		s.mu.Unlock()
		return nil, false
	}
	s.checked = true
	s.mu.Unlock()

	record, err := s.store.GetAutosave(ctx, s.projectID)
	if err != nil {
		s.log.WithFields(logrus.Fields{"project_id": s.projectID, "error": err.Error()}).Warn("Autosave lookup failed")
		return nil, false
	}
	if record == nil {
		return nil, false
	}
	return record, true
}

// MarkLoaded marks the first load cycle complete, after which no recovery
// prompt is offered.
func (s *Saver) MarkLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
}

// Recover loads the stored record for applying to the editor.
func (s *Saver) Recover(ctx context.Context) (*models.AutosaveRecord, error) {
	record, err := s.store.GetAutosave(ctx, s.projectID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNoAutosave
	}
	return record, nil
}

// Discard deletes the stored record, declining recovery.
func (s *Saver) Discard(ctx context.Context) error {
	return s.store.DeleteAutosave(ctx, s.projectID)
}
