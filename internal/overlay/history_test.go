package overlay_test

import (
	"reflect"
	"testing"

	"videostudio/internal/overlay"
	"videostudio/models"
)

func TestMutateUndoRestoresInitial(t *testing.T) {
	var c overlay.Collection
	h := overlay.NewHistory(c)
	initial := c

	const n = 5
	for i := 0; i < n; i++ {
		c, _ = c.Add(models.Overlay{Type: models.OverlayTypeText, DurationInFrames: 30, Width: 10, Height: 10})
		h.Push(c)
	}
	preUndo := c

	for i := 0; i < n; i++ {
		snap, ok := h.Undo()
		if !ok {
			t.Fatalf("undo %d should be possible", i+1)
		}
		c = snap
	}
	if !reflect.DeepEqual(c, initial) {
		t.Fatalf("N undos must restore the initial collection, got %#v", c)
	}
	if h.CanUndo() {
		t.Fatal("after N undos of N mutations, no further undo should exist")
	}

	for i := 0; i < n; i++ {
		snap, ok := h.Redo()
		if !ok {
			t.Fatalf("redo %d should be possible", i+1)
		}
		c = snap
	}
	if !reflect.DeepEqual(c, preUndo) {
		t.Fatal("redos must restore the pre-undo collection")
	}
	if h.CanRedo() {
		t.Fatal("redo should be exhausted")
	}
}

func TestPushDiscardsRedoBranch(t *testing.T) {
	var c overlay.Collection
	h := overlay.NewHistory(c)

	c, _ = c.Add(models.Overlay{Type: models.OverlayTypeVideo, DurationInFrames: 30, Width: 10, Height: 10})
	h.Push(c)
	c, _ = c.Add(models.Overlay{Type: models.OverlayTypeImage, DurationInFrames: 30, Width: 10, Height: 10})
	h.Push(c)

	snap, ok := h.Undo()
	if !ok {
		t.Fatal("undo should be possible")
	}

	branched, _ := snap.Add(models.Overlay{Type: models.OverlayTypeShape, DurationInFrames: 30, Width: 10, Height: 10})
	h.Push(branched)

	if h.CanRedo() {
		t.Fatal("push after undo must discard the abandoned redo branch")
	}
}

func TestUndoRedoBounds(t *testing.T) {
	h := overlay.NewHistory(nil)
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("fresh history should have nothing to undo or redo")
	}
	if _, ok := h.Undo(); ok {
		t.Fatal("undo past the start must report false")
	}
	if _, ok := h.Redo(); ok {
		t.Fatal("redo past the end must report false")
	}
}
