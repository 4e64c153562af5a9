// Package session owns the live editing state for each project: the overlay
// collection, history, gesture state, autosave, and the render orchestrator.
// Every mutation goes through the session mutex, which is the Go rendition of
// the editor's single-threaded event loop: geometry updates, history pushes,
// and autosave's compare-and-write all observe a consistent state.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"videostudio/internal/autosave"
	"videostudio/internal/gesture"
	"videostudio/internal/overlay"
	"videostudio/internal/render"
	"videostudio/models"
)

// ErrNoGesture is returned when a move or commit arrives with no gesture in
// flight; pointer-up cleanup runs exactly once.
var ErrNoGesture = errors.New("no gesture in progress")

// ErrGestureInProgress rejects starting a second gesture before the first
// commits.
var ErrGestureInProgress = errors.New("a gesture is already in progress")

// Defaults for a fresh project session.
const (
	defaultAspectRatio    = "16:9"
	defaultViewportWidth  = 1280
	defaultViewportHeight = 720
)

// Session is one project's editor state.
type Session struct {
	ProjectID string

	mu             sync.Mutex
	overlays       overlay.Collection
	history        *overlay.History
	gesture        *gesture.Session
	selectedID     int
	aspectRatio    string
	viewportWidth  int
	viewportHeight int

	saver        *autosave.Saver
	orchestrator *render.Orchestrator
}

func newSession(projectID string, saver *autosave.Saver, orchestrator *render.Orchestrator) *Session {
	return &Session{
		ProjectID:      projectID,
		overlays:       nil,
		history:        overlay.NewHistory(nil),
		selectedID:     -1,
		aspectRatio:    defaultAspectRatio,
		viewportWidth:  defaultViewportWidth,
		viewportHeight: defaultViewportHeight,
		saver:          saver,
		orchestrator:   orchestrator,
	}
}

// Timeline returns the current collection and its duration in frames.
func (s *Session) Timeline() (overlay.Collection, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays.Clone(), overlay.DurationInFrames(s.overlays)
}

// commitLocked installs a new collection as a committed mutation: the history
// gets a snapshot and duration is derived lazily by readers.
func (s *Session) commitLocked(c overlay.Collection) {
	s.overlays = c
	s.history.Push(c)
}

// AddOverlay appends an overlay with a fresh id and commits.
func (s *Session) AddOverlay(o models.Overlay) models.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, added := s.overlays.Add(o)
	s.commitLocked(c)
	return added
}

// ChangeOverlay applies fn to the overlay with the given id and commits.
// Unknown ids are a no-op and do not pollute history.
func (s *Session) ChangeOverlay(id int, fn func(models.Overlay) models.Overlay) (models.Overlay, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.overlays.Find(id); !ok {
		return models.Overlay{}, false
	}
	s.commitLocked(s.overlays.Change(id, fn))
	changed, _ := s.overlays.Find(id)
	return changed, true
}

// DeleteOverlay removes an overlay and commits.
func (s *Session) DeleteOverlay(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.overlays.Find(id); !ok {
		return false
	}
	s.commitLocked(s.overlays.Delete(id))
	return true
}

// DuplicateOverlay clones an overlay with an offset and commits.
func (s *Session) DuplicateOverlay(id int) (models.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, clone, err := s.overlays.Duplicate(id)
	if err != nil {
		return models.Overlay{}, err
	}
	s.commitLocked(c)
	return clone, nil
}

// SplitOverlay splits an overlay at a frame strictly inside its duration and
// commits.
func (s *Session) SplitOverlay(id, atFrame int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.overlays.Split(id, atFrame)
	if err != nil {
		return err
	}
	s.commitLocked(c)
	return nil
}

// DeleteRow bulk-removes a track and commits.
func (s *Session) DeleteRow(row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(s.overlays.DeleteRow(row))
}

// ResetOverlays replaces the entire collection, used by load and recovery.
// Loading completes the first load cycle, which arms the autosave loop.
func (s *Session) ResetOverlays(overlays []models.Overlay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(overlay.Reset(overlays))
	s.saver.MarkLoaded()
}

// Undo restores the previous snapshot. It reports false at the history floor.
func (s *Session) Undo() (overlay.Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.history.Undo()
	if !ok {
		return nil, false
	}
	s.overlays = snapshot
	return snapshot.Clone(), true
}

// Redo restores the next snapshot, bounded by the history length.
func (s *Session) Redo() (overlay.Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.history.Redo()
	if !ok {
		return nil, false
	}
	s.overlays = snapshot
	return snapshot.Clone(), true
}

// CanUndo/CanRedo are bound checks for UI enablement.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// BeginGesture opens a gesture against an overlay's current geometry and
// selects it. Only one gesture runs at a time.
func (s *Session) BeginGesture(kind gesture.Kind, overlayID int, start gesture.Point, zoom float64, corner gesture.Corner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gesture != nil {
		return ErrGestureInProgress
	}
	target, ok := s.overlays.Find(overlayID)
	if !ok {
		return fmt.Errorf("begin gesture: overlay %d: %w", overlayID, overlay.ErrOverlayNotFound)
	}
	g, err := gesture.Begin(kind, target, start, zoom, corner)
	if err != nil {
		return err
	}
	s.gesture = g
	s.selectedID = overlayID
	return nil
}

// MoveGesture applies the current pointer position as a transient, live
// geometry update. It never touches history.
func (s *Session) MoveGesture(p gesture.Point) (models.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gesture == nil {
		return models.Overlay{}, ErrNoGesture
	}
	updated := s.gesture.Apply(p)
	s.overlays = s.overlays.Change(updated.ID, func(models.Overlay) models.Overlay { return updated })
	return updated, nil
}

// CommitGesture ends the gesture at the pointer-up position: the drag flag
// clears, the final geometry commits, and history takes one snapshot for the
// whole gesture. A second commit reports ErrNoGesture.
func (s *Session) CommitGesture(p gesture.Point) (models.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gesture == nil {
		return models.Overlay{}, ErrNoGesture
	}
	final := s.gesture.End(p)
	s.gesture = nil
	s.commitLocked(s.overlays.Change(final.ID, func(models.Overlay) models.Overlay { return final }))
	committed, _ := s.overlays.Find(final.ID)
	return committed, nil
}

// Select marks an overlay as selected for z-boosting; -1 clears.
func (s *Session) Select(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = id
}

// SelectedID returns the selected overlay id, -1 when none.
func (s *Session) SelectedID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// Viewport returns the aspect ratio and viewport dimensions.
func (s *Session) Viewport() (aspectRatio string, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aspectRatio, s.viewportWidth, s.viewportHeight
}

// SetViewport updates the composition dimensions.
func (s *Session) SetViewport(aspectRatio string, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if aspectRatio != "" {
		s.aspectRatio = aspectRatio
	}
	if width > 0 {
		s.viewportWidth = width
	}
	if height > 0 {
		s.viewportHeight = height
	}
}

// Snapshot serializes the editor state for autosave. Serialization happens
// under the session mutex, so the compare-and-write in the saver always sees
// a consistent, latest state.
func (s *Session) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := models.EditorState{
		Overlays:       append([]models.Overlay{}, s.overlays...),
		AspectRatio:    s.aspectRatio,
		ViewportWidth:  s.viewportWidth,
		ViewportHeight: s.viewportHeight,
	}
	return json.Marshal(state)
}

// ApplyState restores a recovered editor state.
func (s *Session) ApplyState(state models.EditorState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(overlay.Reset(state.Overlays))
	if state.AspectRatio != "" {
		s.aspectRatio = state.AspectRatio
	}
	if state.ViewportWidth > 0 {
		s.viewportWidth = state.ViewportWidth
	}
	if state.ViewportHeight > 0 {
		s.viewportHeight = state.ViewportHeight
	}
	s.saver.MarkLoaded()
}

// RenderInput builds a render submission from the current composition.
func (s *Session) RenderInput(src string) models.RenderInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.RenderInput{
		ID: s.ProjectID,
		InputProps: models.RenderInputProps{
			Overlays:         append([]models.Overlay{}, s.overlays...),
			DurationInFrames: overlay.DurationInFrames(s.overlays),
			FPS:              overlay.FPS,
			Width:            s.viewportWidth,
			Height:           s.viewportHeight,
			Src:              src,
		},
	}
}

// Saver exposes the project's autosave saver.
func (s *Session) Saver() *autosave.Saver {
	return s.saver
}

// Render exposes the project's render orchestrator.
func (s *Session) Render() *render.Orchestrator {
	return s.orchestrator
}
