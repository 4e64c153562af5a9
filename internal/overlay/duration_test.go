package overlay_test

import (
	"testing"

	"videostudio/internal/overlay"
	"videostudio/models"
)

func TestEmptyCollectionIsExactlyOneSecond(t *testing.T) {
	if got := overlay.DurationInFrames(nil); got != overlay.FPS {
		t.Fatalf("empty collection: expected %d frames, got %d", overlay.FPS, got)
	}
}

func TestDurationIsFurthestOverlayEnd(t *testing.T) {
	c := overlay.Collection{
		{ID: 1, From: 0, DurationInFrames: 45, Width: 1, Height: 1},
		{ID: 2, From: 60, DurationInFrames: 90, Width: 1, Height: 1},
		{ID: 3, From: 10, DurationInFrames: 20, Width: 1, Height: 1},
	}
	if got := overlay.DurationInFrames(c); got != 150 {
		t.Fatalf("expected 150 frames, got %d", got)
	}
}

func TestShortOverlaysStillFloorAtOneSecond(t *testing.T) {
	c := overlay.Collection{{ID: 1, From: 0, DurationInFrames: 5, Width: 1, Height: 1}}
	if got := overlay.DurationInFrames(c); got != overlay.FPS {
		t.Fatalf("expected one-second floor of %d frames, got %d", overlay.FPS, got)
	}
}

func TestDurationIsIdempotent(t *testing.T) {
	c := overlay.Collection{{ID: 1, From: 30, DurationInFrames: 120, Width: 1, Height: 1}}
	first := overlay.DurationInFrames(c)
	for i := 0; i < 5; i++ {
		if got := overlay.DurationInFrames(c); got != first {
			t.Fatalf("duration changed on unchanged collection: %d != %d", got, first)
		}
	}
}

func TestFrameSecondConversions(t *testing.T) {
	if got := overlay.FramesToSeconds(90); got != 3 {
		t.Fatalf("90 frames should be 3s, got %v", got)
	}
	if got := overlay.SecondsToFrames(2.5); got != 75 {
		t.Fatalf("2.5s should be 75 frames, got %d", got)
	}
}

func baseAt(from, dur int) models.Overlay {
	return models.Overlay{Type: models.OverlayTypeVideo, From: from, DurationInFrames: dur, Width: 1, Height: 1}
}

func TestDurationTracksMutations(t *testing.T) {
	var c overlay.Collection
	c, _ = c.Add(baseAt(0, 60))
	if got := overlay.DurationInFrames(c); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
	c, _ = c.Add(baseAt(60, 60))
	if got := overlay.DurationInFrames(c); got != 120 {
		t.Fatalf("expected 120, got %d", got)
	}
	c = c.Delete(2)
	if got := overlay.DurationInFrames(c); got != 60 {
		t.Fatalf("expected 60 after delete, got %d", got)
	}
}
