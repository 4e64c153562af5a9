package gesture_test

import (
	"errors"
	"math"
	"testing"

	"videostudio/internal/gesture"
	"videostudio/models"
)

func spatialOverlay() models.Overlay {
	return models.Overlay{
		ID:               1,
		Type:             models.OverlayTypeVideo,
		DurationInFrames: 90,
		Left:             100,
		Top:              200,
		Width:            300,
		Height:           150,
		Rotation:         10,
	}
}

func TestDragScalesDeltaByZoom(t *testing.T) {
	o := spatialOverlay()
	s, err := gesture.Begin(gesture.KindDrag, o, gesture.Point{X: 50, Y: 50}, 2, "")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	moved := s.Apply(gesture.Point{X: 70, Y: 40})
	if moved.Left != 110 || moved.Top != 195 {
		t.Fatalf("expected left 110 top 195, got %v/%v", moved.Left, moved.Top)
	}
	if !moved.IsDragging {
		t.Fatal("overlay must carry the drag flag during the gesture")
	}

	done := s.End(gesture.Point{X: 70, Y: 40})
	if done.IsDragging {
		t.Fatal("pointer-up must clear the drag flag")
	}
	if done.Left != 110 || done.Top != 195 {
		t.Fatalf("End must keep the final geometry, got %v/%v", done.Left, done.Top)
	}
}

func TestDragRoundsDelta(t *testing.T) {
	o := spatialOverlay()
	s, _ := gesture.Begin(gesture.KindDrag, o, gesture.Point{X: 0, Y: 0}, 3, "")
	moved := s.Apply(gesture.Point{X: 10, Y: 10}) // 10/3 = 3.33 -> 3
	if moved.Left != o.Left+3 || moved.Top != o.Top+3 {
		t.Fatalf("expected rounded delta of 3, got %v/%v", moved.Left-o.Left, moved.Top-o.Top)
	}
}

func TestResizeBottomRightGrows(t *testing.T) {
	o := spatialOverlay()
	s, _ := gesture.Begin(gesture.KindResize, o, gesture.Point{X: 0, Y: 0}, 1, gesture.CornerBottomRight)

	r := s.Apply(gesture.Point{X: 40, Y: 30})
	if r.Width != 340 || r.Height != 180 {
		t.Fatalf("expected 340x180, got %vx%v", r.Width, r.Height)
	}
	if r.Left != o.Left || r.Top != o.Top {
		t.Fatal("bottom-right resize must not move the origin")
	}
}

func TestResizeTopLeftMovesOriginAndInvertsDelta(t *testing.T) {
	o := spatialOverlay()
	s, _ := gesture.Begin(gesture.KindResize, o, gesture.Point{X: 0, Y: 0}, 1, gesture.CornerTopLeft)

	r := s.Apply(gesture.Point{X: 20, Y: 10})
	if r.Width != 280 || r.Height != 140 {
		t.Fatalf("expected 280x140, got %vx%v", r.Width, r.Height)
	}
	if r.Left != 120 || r.Top != 210 {
		t.Fatalf("expected origin 120/210, got %v/%v", r.Left, r.Top)
	}
}

func TestResizeNeverInvertsDimensions(t *testing.T) {
	o := spatialOverlay()
	corners := []gesture.Corner{
		gesture.CornerTopLeft, gesture.CornerTopRight,
		gesture.CornerBottomLeft, gesture.CornerBottomRight,
	}
	// Degenerate drags far past the opposite edge in every direction.
	points := []gesture.Point{
		{X: 10000, Y: 10000},
		{X: -10000, Y: -10000},
		{X: 10000, Y: -10000},
		{X: -10000, Y: 10000},
	}
	for _, corner := range corners {
		s, err := gesture.Begin(gesture.KindResize, o, gesture.Point{}, 1, corner)
		if err != nil {
			t.Fatalf("Begin(%s) failed: %v", corner, err)
		}
		for _, p := range points {
			r := s.Apply(p)
			if r.Width < 1 || r.Height < 1 {
				t.Fatalf("corner %s at %v: dimension inverted to %vx%v", corner, p, r.Width, r.Height)
			}
		}
	}
}

func TestResizeClampsMovedEdgeAtOppositeEdge(t *testing.T) {
	o := spatialOverlay()
	s, _ := gesture.Begin(gesture.KindResize, o, gesture.Point{}, 1, gesture.CornerTopLeft)

	r := s.Apply(gesture.Point{X: 5000, Y: 5000})
	if r.Width != 1 || r.Height != 1 {
		t.Fatalf("expected 1x1 floor, got %vx%v", r.Width, r.Height)
	}
	if r.Left != o.Left+o.Width-1 || r.Top != o.Top+o.Height-1 {
		t.Fatalf("moved edge crossed the opposite edge: origin %v/%v", r.Left, r.Top)
	}
}

func TestRotateUsesDeltaFromGestureStart(t *testing.T) {
	o := spatialOverlay() // center (250, 275)
	// Start directly right of center: angle 0.
	s, err := gesture.Begin(gesture.KindRotate, o, gesture.Point{X: 350, Y: 275}, 1, "")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	// Pointer directly below center: +90 degrees from start.
	r := s.Apply(gesture.Point{X: 250, Y: 375})
	if math.Abs(r.Rotation-(o.Rotation+90)) > 1e-9 {
		t.Fatalf("expected rotation %v, got %v", o.Rotation+90, r.Rotation)
	}
}

func TestRotateDoesNotAccumulateAcrossMoves(t *testing.T) {
	o := spatialOverlay()
	s, _ := gesture.Begin(gesture.KindRotate, o, gesture.Point{X: 350, Y: 275}, 1, "")

	final := gesture.Point{X: 250, Y: 375}

	// Many intermediate moves must land exactly where a single move would.
	direct := s.Apply(final)
	for i := 0; i < 50; i++ {
		s.Apply(gesture.Point{X: 350 - float64(i*2), Y: 275 + float64(i*2)})
	}
	stepped := s.Apply(final)

	if direct.Rotation != stepped.Rotation {
		t.Fatalf("rotation drifted across intermediate events: %v != %v", direct.Rotation, stepped.Rotation)
	}
}

func TestAudioOverlaysRejectGestures(t *testing.T) {
	audio := spatialOverlay()
	audio.Type = models.OverlayTypeAudio

	for _, kind := range []gesture.Kind{gesture.KindDrag, gesture.KindResize, gesture.KindRotate} {
		corner := gesture.Corner("")
		if kind == gesture.KindResize {
			corner = gesture.CornerTopLeft
		}
		if _, err := gesture.Begin(kind, audio, gesture.Point{}, 1, corner); !errors.Is(err, gesture.ErrNotSpatial) {
			t.Fatalf("%s on audio overlay: expected ErrNotSpatial, got %v", kind, err)
		}
	}
	if gesture.ShowsHandles(audio) {
		t.Fatal("audio overlays must not expose handles")
	}
}

func TestZIndexFollowsTrackOrder(t *testing.T) {
	top := models.Overlay{Row: 0, Type: models.OverlayTypeVideo}
	below := models.Overlay{Row: 2, Type: models.OverlayTypeImage}

	if gesture.ZIndex(top, false) <= gesture.ZIndex(below, false) {
		t.Fatal("lower rows must render on top")
	}
	// Selecting a lower-track overlay must not lift it above a higher track.
	if gesture.ZIndex(below, true) >= gesture.ZIndex(top, false) {
		t.Fatal("selection boost must not override track order")
	}
	if gesture.ZIndex(top, true) <= gesture.ZIndex(top, false) {
		t.Fatal("selection must boost the z-index")
	}
}

func TestBeginRejectsUnknownKindsAndCorners(t *testing.T) {
	o := spatialOverlay()
	if _, err := gesture.Begin(gesture.Kind("pinch"), o, gesture.Point{}, 1, ""); !errors.Is(err, gesture.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := gesture.Begin(gesture.KindResize, o, gesture.Point{}, 1, gesture.Corner("middle")); !errors.Is(err, gesture.ErrUnknownCorner) {
		t.Fatalf("expected ErrUnknownCorner, got %v", err)
	}
}
