package media_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"videostudio/internal/assetstore"
	"videostudio/internal/durable"
	"videostudio/internal/media"
	"videostudio/internal/testsupport"
	"videostudio/models"
)

type fakeObjectStore struct {
	uploads  int
	removed  []string
	failPath map[string]bool
	uploadErr error
}

func (f *fakeObjectStore) Upload(ctx context.Context, userID, fileName, contentType string, data []byte) (assetstore.UploadResult, error) {
	if f.uploadErr != nil {
		return assetstore.UploadResult{}, f.uploadErr
	}
	f.uploads++
	return assetstore.UploadResult{
		ID:         fmt.Sprintf("obj-%d", f.uploads),
		ServerPath: fmt.Sprintf("%s/obj-%d", userID, f.uploads),
		Size:       int64(len(data)),
	}, nil
}

func (f *fakeObjectStore) Remove(ctx context.Context, serverPath string) error {
	if f.failPath[serverPath] {
		return errors.New("remote delete failed")
	}
	f.removed = append(f.removed, serverPath)
	return nil
}

type fakeProber struct {
	duration time.Duration
	frame    []byte
	err      error
	hang     bool
}

func (f *fakeProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	if f.hang {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return f.duration, f.err
}

func (f *fakeProber) Frame(ctx context.Context, path string, at time.Duration) ([]byte, error) {
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.frame, f.err
}

func newPipeline(t *testing.T, objects media.ObjectStore, prober media.Prober) (*media.Pipeline, durable.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t)
	return media.NewPipeline(store, objects, prober, testsupport.Logger()), store
}

func TestImageUploadHasThumbnailNoDuration(t *testing.T) {
	objects := &fakeObjectStore{}
	p, _ := newPipeline(t, objects, &fakeProber{})

	payload := make([]byte, 2<<20) // 2MB image
	item, err := p.Upload(context.Background(), "u1", "photo.jpg", "image/jpeg", payload)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if item.Kind != models.MediaKindImage {
		t.Fatalf("expected image kind, got %s", item.Kind)
	}
	if !strings.HasPrefix(item.Thumbnail, "data:image/jpeg;base64,") {
		t.Fatalf("expected an embeddable thumbnail, got %q", item.Thumbnail[:min(40, len(item.Thumbnail))])
	}
	if item.Duration != nil {
		t.Fatalf("images must not report a duration, got %v", *item.Duration)
	}
	if item.Size != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), item.Size)
	}
}

func TestVideoUploadProbesThumbnailAndDuration(t *testing.T) {
	objects := &fakeObjectStore{}
	prober := &fakeProber{duration: 12 * time.Second, frame: []byte("jpegbytes")}
	p, store := newPipeline(t, objects, prober)

	item, err := p.Upload(context.Background(), "u1", "clip.mp4", "video/mp4", []byte("videodata"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if item.Kind != models.MediaKindVideo {
		t.Fatalf("expected video kind, got %s", item.Kind)
	}
	if item.Thumbnail == "" {
		t.Fatal("expected a thumbnail from the decoded frame")
	}
	if item.Duration == nil || *item.Duration != 12 {
		t.Fatalf("expected duration 12s, got %v", item.Duration)
	}

	// The combined result must land in the index.
	indexed, err := store.GetMediaItem(context.Background(), item.ID)
	if err != nil || indexed == nil {
		t.Fatalf("expected item in index: %v / %#v", err, indexed)
	}
}

func TestCorruptVideoResolvesEmptyWithinTimeout(t *testing.T) {
	objects := &fakeObjectStore{}
	prober := &fakeProber{err: errors.New("moov atom not found")}
	p, _ := newPipeline(t, objects, prober)

	item, err := p.Upload(context.Background(), "u1", "broken.mp4", "video/mp4", []byte("garbage"))
	if err != nil {
		t.Fatalf("corrupt media must still upload, got %v", err)
	}
	if item.Thumbnail != "" {
		t.Fatalf("corrupt video must yield an empty thumbnail, got %q", item.Thumbnail)
	}
	if item.Duration != nil {
		t.Fatalf("corrupt video must yield no duration, got %v", *item.Duration)
	}
}

func TestUploadFailureSurfacesToCaller(t *testing.T) {
	objects := &fakeObjectStore{uploadErr: errors.New("bucket unavailable")}
	p, store := newPipeline(t, objects, &fakeProber{})

	if _, err := p.Upload(context.Background(), "u1", "f.png", "image/png", []byte("x")); err == nil {
		t.Fatal("expected upload failure to surface")
	}
	items, _ := store.ListMediaItems(context.Background(), "u1")
	if len(items) != 0 {
		t.Fatalf("failed upload must not be indexed, got %d items", len(items))
	}
}

func TestDeleteRemovesRemoteThenLocal(t *testing.T) {
	objects := &fakeObjectStore{}
	p, store := newPipeline(t, objects, &fakeProber{})

	item, err := p.Upload(context.Background(), "u1", "f.png", "image/png", []byte("x"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if err := p.Delete(context.Background(), "u1", item.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(objects.removed) != 1 || objects.removed[0] != item.ServerPath {
		t.Fatalf("expected remote object removed, got %v", objects.removed)
	}
	indexed, _ := store.GetMediaItem(context.Background(), item.ID)
	if indexed != nil {
		t.Fatal("expected index row removed")
	}

	if err := p.Delete(context.Background(), "u1", item.ID); !errors.Is(err, media.ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound for a second delete, got %v", err)
	}
	if err := p.Delete(context.Background(), "u2", "whatever"); !errors.Is(err, media.ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound for a foreign user, got %v", err)
	}
}

func TestDeleteKeepsIndexOnRemoteFailure(t *testing.T) {
	objects := &fakeObjectStore{failPath: map[string]bool{}}
	p, store := newPipeline(t, objects, &fakeProber{})

	item, _ := p.Upload(context.Background(), "u1", "f.png", "image/png", []byte("x"))
	objects.failPath[item.ServerPath] = true

	if err := p.Delete(context.Background(), "u1", item.ID); err == nil {
		t.Fatal("expected remote failure to surface")
	}
	indexed, _ := store.GetMediaItem(context.Background(), item.ID)
	if indexed == nil {
		t.Fatal("remote failure must keep the index row")
	}
}

func TestClearIsBestEffortPerItem(t *testing.T) {
	objects := &fakeObjectStore{failPath: map[string]bool{}}
	p, store := newPipeline(t, objects, &fakeProber{})

	ctx := context.Background()
	a, _ := p.Upload(ctx, "u1", "a.png", "image/png", []byte("a"))
	b, _ := p.Upload(ctx, "u1", "b.png", "image/png", []byte("b"))
	objects.failPath[b.ServerPath] = true

	removed, failed, err := p.Clear(ctx, "u1")
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 1 || failed != 1 {
		t.Fatalf("expected 1 removed / 1 failed, got %d / %d", removed, failed)
	}

	// The failed item stays indexed so the next clear retries it.
	if item, _ := store.GetMediaItem(ctx, b.ID); item == nil {
		t.Fatal("failed item must remain in the index")
	}
	if item, _ := store.GetMediaItem(ctx, a.ID); item != nil {
		t.Fatal("removed item must leave the index")
	}

	objects.failPath[b.ServerPath] = false
	removed, failed, err = p.Clear(ctx, "u1")
	if err != nil || removed != 1 || failed != 0 {
		t.Fatalf("retry clear: expected 1/0, got %d/%d (%v)", removed, failed, err)
	}
}

func TestClearResolvesImmediatelyWhenEmpty(t *testing.T) {
	p, _ := newPipeline(t, &fakeObjectStore{}, &fakeProber{})
	removed, failed, err := p.Clear(context.Background(), "nobody")
	if err != nil || removed != 0 || failed != 0 {
		t.Fatalf("empty clear must be a no-op, got %d/%d (%v)", removed, failed, err)
	}
}

func TestKindOfFallsBackToExtension(t *testing.T) {
	if got := media.KindOf("", "movie.MOV"); got != models.MediaKindVideo {
		t.Fatalf("expected video for .MOV, got %s", got)
	}
	if got := media.KindOf("", "track.mp3"); got != models.MediaKindAudio {
		t.Fatalf("expected audio for .mp3, got %s", got)
	}
	if got := media.KindOf("application/octet-stream", "pic.png"); got != models.MediaKindImage {
		t.Fatalf("expected image fallback, got %s", got)
	}
}
