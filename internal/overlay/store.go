// Package overlay implements the timeline's overlay collection: pure value
// mutations, composition duration, and the undo/redo history over snapshots.
package overlay

import (
	"errors"
	"fmt"

	"videostudio/models"
)

// ErrSplitOutOfRange is returned when a split frame is not strictly inside the
// overlay's duration.
var ErrSplitOutOfRange = errors.New("split frame must be strictly inside the overlay duration")

// ErrOverlayNotFound is returned by operations that require an existing overlay.
var ErrOverlayNotFound = errors.New("overlay not found")

// Offsets applied by Duplicate so the clone never sits exactly on top of the
// original.
const (
	duplicateOffsetPx     = 20
	duplicateOffsetFrames = 30
)

// Collection is an ordered set of overlays. Every mutation returns a fresh
// slice and never aliases its receiver, so history can snapshot by reference.
type Collection []models.Overlay

// Clone returns a copy of the collection sharing no backing storage.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Find returns the overlay with the given id.
func (c Collection) Find(id int) (models.Overlay, bool) {
	for _, o := range c {
		if o.ID == id {
			return o, true
		}
	}
	return models.Overlay{}, false
}

// NextID returns the next free overlay id (max existing + 1).
func (c Collection) NextID() int {
	next := 1
	for _, o := range c {
		if o.ID >= next {
			next = o.ID + 1
		}
	}
	return next
}

// Add appends o with a freshly allocated id and returns the new collection
// along with the stored overlay.
func (c Collection) Add(o models.Overlay) (Collection, models.Overlay) {
	o.ID = c.NextID()
	o = clamp(o)
	out := c.Clone()
	out = append(out, o)
	return out, o
}

// Change applies fn to the overlay with the given id. Unknown ids are a no-op.
// Timing and size invariants are re-clamped after the transform.
func (c Collection) Change(id int, fn func(models.Overlay) models.Overlay) Collection {
	out := c.Clone()
	for i, o := range out {
		if o.ID == id {
			out[i] = clamp(fn(o))
			break
		}
	}
	return out
}

// Delete removes the overlay with the given id, if present.
func (c Collection) Delete(id int) Collection {
	out := make(Collection, 0, len(c))
	for _, o := range c {
		if o.ID != id {
			out = append(out, o)
		}
	}
	return out
}

// Duplicate clones the overlay with the given id under a new id, offset in
// both position and time to avoid exact overlap.
func (c Collection) Duplicate(id int) (Collection, models.Overlay, error) {
	orig, ok := c.Find(id)
	if !ok {
		return c, models.Overlay{}, fmt.Errorf("duplicate overlay %d: %w", id, ErrOverlayNotFound)
	}
	clone := orig
	clone.ID = c.NextID()
	clone.IsDragging = false
	clone.Left += duplicateOffsetPx
	clone.Top += duplicateOffsetPx
	clone.From += duplicateOffsetFrames
	out := c.Clone()
	out = append(out, clone)
	return out, clone, nil
}

// Split replaces one overlay with two contiguous overlays whose durations sum
// to the original. atFrame is relative to the overlay start and must satisfy
// 0 < atFrame < durationInFrames; anything else is rejected with no mutation.
func (c Collection) Split(id, atFrame int) (Collection, error) {
	orig, ok := c.Find(id)
	if !ok {
		return c, fmt.Errorf("split overlay %d: %w", id, ErrOverlayNotFound)
	}
	if atFrame <= 0 || atFrame >= orig.DurationInFrames {
		return c, fmt.Errorf("split overlay %d at frame %d of %d: %w", id, atFrame, orig.DurationInFrames, ErrSplitOutOfRange)
	}

	first := orig
	first.DurationInFrames = atFrame

	second := orig
	second.ID = c.NextID()
	second.From = orig.From + atFrame
	second.DurationInFrames = orig.DurationInFrames - atFrame

	out := make(Collection, 0, len(c)+1)
	for _, o := range c {
		if o.ID == id {
			out = append(out, first, second)
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// DeleteRow bulk-removes every overlay on the given track.
func (c Collection) DeleteRow(row int) Collection {
	out := make(Collection, 0, len(c))
	for _, o := range c {
		if o.Row != row {
			out = append(out, o)
		}
	}
	return out
}

// Reset replaces the entire set, used by project load and crash recovery.
func Reset(overlays []models.Overlay) Collection {
	out := make(Collection, len(overlays))
	copy(out, overlays)
	for i := range out {
		out[i] = clamp(out[i])
	}
	return out
}

// clamp enforces the store invariants without raising: width and height at
// least 1, non-negative start frame, positive duration.
func clamp(o models.Overlay) models.Overlay {
	if o.Width < 1 {
		o.Width = 1
	}
	if o.Height < 1 {
		o.Height = 1
	}
	if o.From < 0 {
		o.From = 0
	}
	if o.DurationInFrames < 1 {
		o.DurationInFrames = 1
	}
	return o
}
