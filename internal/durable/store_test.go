package durable_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"videostudio/internal/durable"
	"videostudio/internal/testsupport"
	"videostudio/models"
)

func TestAutosaveLastWriteWins(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	t0 := time.Now().UTC()
	if err := store.SaveAutosave(ctx, "p1", []byte(`{"overlays":[]}`), t0); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	t1 := t0.Add(5 * time.Second)
	if err := store.SaveAutosave(ctx, "p1", []byte(`{"overlays":[1]}`), t1); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	record, err := store.GetAutosave(ctx, "p1")
	if err != nil {
		t.Fatalf("GetAutosave failed: %v", err)
	}
	if record == nil {
		t.Fatal("expected a record")
	}
	if !bytes.Equal(record.StateBlob, []byte(`{"overlays":[1]}`)) {
		t.Fatalf("expected the second blob to win, got %s", record.StateBlob)
	}
	if !record.Timestamp.Equal(t1) {
		t.Fatalf("expected timestamp %v, got %v", t1, record.Timestamp)
	}
}

func TestAutosaveAbsentAndDelete(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	record, err := store.GetAutosave(ctx, "missing")
	if err != nil {
		t.Fatalf("GetAutosave failed: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil for a missing project, got %#v", record)
	}

	if err := store.SaveAutosave(ctx, "p2", []byte("x"), time.Now()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.DeleteAutosave(ctx, "p2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	record, err = store.GetAutosave(ctx, "p2")
	if err != nil {
		t.Fatalf("GetAutosave after delete failed: %v", err)
	}
	if record != nil {
		t.Fatal("expected the record to be gone after delete")
	}
}

func TestMediaIndexRoundTrip(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	duration := 12.5
	item := models.MediaItem{
		ID:           "m1",
		UserID:       "u1",
		Name:         "clip.mp4",
		Kind:         models.MediaKindVideo,
		ServerPath:   "u1/m1.mp4",
		Size:         2048,
		LastModified: time.Now().UTC().Truncate(time.Millisecond),
		Thumbnail:    "data:image/jpeg;base64,xxx",
		Duration:     &duration,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := store.PutMediaItem(ctx, item); err != nil {
		t.Fatalf("PutMediaItem failed: %v", err)
	}

	got, err := store.GetMediaItem(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMediaItem failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected the item back")
	}
	if got.Kind != models.MediaKindVideo || got.ServerPath != item.ServerPath || got.Size != item.Size {
		t.Fatalf("unexpected item: %#v", got)
	}
	if got.Duration == nil || *got.Duration != duration {
		t.Fatalf("expected duration %v, got %v", duration, got.Duration)
	}
	if got.Thumbnail != item.Thumbnail {
		t.Fatalf("expected thumbnail preserved, got %q", got.Thumbnail)
	}
}

func TestMediaItemWithoutProbeResults(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	item := models.MediaItem{
		ID: "m2", UserID: "u1", Name: "photo.png", Kind: models.MediaKindImage,
		ServerPath: "u1/m2.png", Size: 10,
		LastModified: time.Now().UTC(), CreatedAt: time.Now().UTC(),
	}
	if err := store.PutMediaItem(ctx, item); err != nil {
		t.Fatalf("PutMediaItem failed: %v", err)
	}
	got, err := store.GetMediaItem(ctx, "m2")
	if err != nil {
		t.Fatalf("GetMediaItem failed: %v", err)
	}
	if got.Duration != nil {
		t.Fatalf("image duration must stay nil, got %v", *got.Duration)
	}
	if got.Thumbnail != "" {
		t.Fatalf("expected empty thumbnail, got %q", got.Thumbnail)
	}
}

func TestListMediaItemsIsScopedToUser(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, userID := range []string{"u1", "u1", "u2"} {
		item := models.MediaItem{
			ID: string(rune('a' + i)), UserID: userID, Name: "f", Kind: models.MediaKindAudio,
			ServerPath: "p", Size: 1, LastModified: now, CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if err := store.PutMediaItem(ctx, item); err != nil {
			t.Fatalf("PutMediaItem failed: %v", err)
		}
	}

	items, err := store.ListMediaItems(ctx, "u1")
	if err != nil {
		t.Fatalf("ListMediaItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items for u1, got %d", len(items))
	}

	if err := store.DeleteMediaItem(ctx, items[0].ID); err != nil {
		t.Fatalf("DeleteMediaItem failed: %v", err)
	}
	items, err = store.ListMediaItems(ctx, "u1")
	if err != nil {
		t.Fatalf("ListMediaItems after delete failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item after delete, got %d", len(items))
	}
}

func TestProbeFallsBackToMemory(t *testing.T) {
	// Point the data dir at a regular file so MkdirAll fails.
	blocker := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	store := durable.Probe(blocker, testsupport.Logger())
	if _, ok := store.(*durable.MemoryStore); !ok {
		t.Fatalf("expected in-memory fallback, got %T", store)
	}

	// The fallback still behaves like a store.
	ctx := context.Background()
	if err := store.SaveAutosave(ctx, "p", []byte("s"), time.Now()); err != nil {
		t.Fatalf("fallback save failed: %v", err)
	}
	record, err := store.GetAutosave(ctx, "p")
	if err != nil || record == nil {
		t.Fatalf("fallback get failed: %v / %#v", err, record)
	}
}
