// Package gesture implements pointer-driven geometry interaction: one
// pointer-down-to-pointer-up session dragging, resizing, or rotating an
// overlay. A Session captures every "initial" value at gesture start; move
// events derive absolute geometry from those instead of accumulating deltas,
// so intermediate events can never introduce drift.
package gesture

import (
	"errors"
	"fmt"
	"math"

	"videostudio/models"
)

// Kind selects which controller a session drives.
type Kind string

const (
	KindDrag   Kind = "drag"
	KindResize Kind = "resize"
	KindRotate Kind = "rotate"
)

// Corner identifies which resize handle a gesture grabbed.
type Corner string

const (
	CornerTopLeft     Corner = "top-left"
	CornerTopRight    Corner = "top-right"
	CornerBottomLeft  Corner = "bottom-left"
	CornerBottomRight Corner = "bottom-right"
)

// Point is a pointer position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ErrNotSpatial is returned when a gesture targets an audio overlay, which has
// no on-canvas footprint and exposes no handles.
var ErrNotSpatial = errors.New("overlay does not support spatial interaction")

// ErrUnknownKind is returned for gesture kinds this layer does not implement.
var ErrUnknownKind = errors.New("unknown gesture kind")

// ErrUnknownCorner is returned when a resize gesture names no valid handle.
var ErrUnknownCorner = errors.New("unknown resize corner")

// minDimension is the floor for overlay width and height during resize.
const minDimension = 1

// Session is the value object for one gesture: the pointer position, overlay
// geometry, and zoom captured at pointer-down. Sessions are immutable; Apply
// computes geometry for the current pointer from the captured state.
type Session struct {
	Kind      Kind
	OverlayID int
	Corner    Corner
	Start     Point
	Zoom      float64
	Orig      models.Overlay

	// startAngle is the pointer's angle about the overlay center at gesture
	// start, in degrees. Rotation applies the delta from this, never the
	// per-event increments.
	startAngle float64
}

// Begin opens a gesture session against the overlay's current geometry.
func Begin(kind Kind, o models.Overlay, start Point, zoom float64, corner Corner) (*Session, error) {
	if !o.IsSpatial() {
		return nil, fmt.Errorf("begin %s on overlay %d: %w", kind, o.ID, ErrNotSpatial)
	}
	if zoom <= 0 {
		zoom = 1
	}

	s := &Session{
		Kind:      kind,
		OverlayID: o.ID,
		Start:     start,
		Zoom:      zoom,
		Orig:      o,
	}

	switch kind {
	case KindDrag:
	case KindResize:
		switch corner {
		case CornerTopLeft, CornerTopRight, CornerBottomLeft, CornerBottomRight:
			s.Corner = corner
		default:
			return nil, fmt.Errorf("begin resize on overlay %d: %w (%q)", o.ID, ErrUnknownCorner, corner)
		}
	case KindRotate:
		cx, cy := center(o)
		s.startAngle = angleDeg(cx, cy, start)
	default:
		return nil, fmt.Errorf("begin gesture on overlay %d: %w (%q)", o.ID, ErrUnknownKind, kind)
	}
	return s, nil
}

// Apply computes the overlay geometry for the current pointer position. The
// result carries IsDragging=true for the gesture's lifetime; End clears it.
func (s *Session) Apply(p Point) models.Overlay {
	switch s.Kind {
	case KindDrag:
		return s.applyDrag(p)
	case KindResize:
		return s.applyResize(p)
	case KindRotate:
		return s.applyRotate(p)
	}
	return s.Orig
}

// End returns the final geometry for the pointer-up position with the
// transient drag flag cleared, ready to commit.
func (s *Session) End(p Point) models.Overlay {
	o := s.Apply(p)
	o.IsDragging = false
	return o
}

func (s *Session) applyDrag(p Point) models.Overlay {
	o := s.Orig
	dx := (p.X - s.Start.X) / s.Zoom
	dy := (p.Y - s.Start.Y) / s.Zoom
	o.Left = s.Orig.Left + math.Round(dx)
	o.Top = s.Orig.Top + math.Round(dy)
	o.IsDragging = true
	return o
}

// applyResize recomputes width/height/left/top per corner. The pointer delta
// inverts sign on left- and top-anchored corners, and the moved edge is
// clamped so it can never cross the opposite edge.
func (s *Session) applyResize(p Point) models.Overlay {
	o := s.Orig
	dx := (p.X - s.Start.X) / s.Zoom
	dy := (p.Y - s.Start.Y) / s.Zoom

	switch s.Corner {
	case CornerTopLeft:
		o.Left, o.Width = moveLeadingEdge(s.Orig.Left, s.Orig.Width, dx)
		o.Top, o.Height = moveLeadingEdge(s.Orig.Top, s.Orig.Height, dy)
	case CornerTopRight:
		o.Width = growTrailingEdge(s.Orig.Width, dx)
		o.Top, o.Height = moveLeadingEdge(s.Orig.Top, s.Orig.Height, dy)
	case CornerBottomLeft:
		o.Left, o.Width = moveLeadingEdge(s.Orig.Left, s.Orig.Width, dx)
		o.Height = growTrailingEdge(s.Orig.Height, dy)
	case CornerBottomRight:
		o.Width = growTrailingEdge(s.Orig.Width, dx)
		o.Height = growTrailingEdge(s.Orig.Height, dy)
	}
	o.IsDragging = true
	return o
}

func (s *Session) applyRotate(p Point) models.Overlay {
	o := s.Orig
	cx, cy := center(s.Orig)
	delta := angleDeg(cx, cy, p) - s.startAngle
	o.Rotation = s.Orig.Rotation + delta
	o.IsDragging = true
	return o
}

// moveLeadingEdge shifts a left/top-anchored edge by delta. Shrinking stops at
// the minimum dimension, which pins the moved edge just short of the opposite
// one.
func moveLeadingEdge(origPos, origSize, delta float64) (pos, size float64) {
	size = origSize - delta
	if size < minDimension {
		size = minDimension
		pos = origPos + origSize - minDimension
		return pos, size
	}
	return origPos + delta, size
}

// growTrailingEdge adjusts a right/bottom-anchored dimension, floored at the
// minimum.
func growTrailingEdge(origSize, delta float64) float64 {
	size := origSize + delta
	if size < minDimension {
		return minDimension
	}
	return size
}

func center(o models.Overlay) (float64, float64) {
	return o.Left + o.Width/2, o.Top + o.Height/2
}

// angleDeg is the angle of p about (cx, cy) in degrees.
func angleDeg(cx, cy float64, p Point) float64 {
	return math.Atan2(p.Y-cy, p.X-cx) * 180 / math.Pi
}
