// Package media ingests user-supplied assets: thumbnail generation, duration
// probing, and upload to the remote object store run concurrently, and the
// combined result is written to the local media index.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"videostudio/internal/assetstore"
	"videostudio/internal/durable"
	"videostudio/models"
)

// probeTimeout bounds each thumbnail/duration probe. On expiry the item is
// indexed with an empty thumbnail and no duration instead of failing.
const probeTimeout = 5 * time.Second

// ErrMediaNotFound is returned when a delete names an item the user's index
// does not hold.
var ErrMediaNotFound = fmt.Errorf("media item not found")

// Prober abstracts ffmpeg-based media inspection so tests run without the
// binaries installed.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
	Frame(ctx context.Context, path string, at time.Duration) ([]byte, error)
}

// ObjectStore is the remote side of the pipeline; assetstore.Client satisfies
// it.
type ObjectStore interface {
	Upload(ctx context.Context, userID, fileName, contentType string, data []byte) (assetstore.UploadResult, error)
	Remove(ctx context.Context, serverPath string) error
}

// Pipeline wires the probe, upload, and index stages together.
type Pipeline struct {
	store   durable.Store
	objects ObjectStore
	prober  Prober
	log     *logrus.Logger
}

// NewPipeline creates a media pipeline over the given durable store and
// object store.
func NewPipeline(store durable.Store, objects ObjectStore, prober Prober, log *logrus.Logger) *Pipeline {
	return &Pipeline{store: store, objects: objects, prober: prober, log: log}
}

// Upload ingests one file: concurrently generates a thumbnail, probes the
// duration, and uploads the raw bytes. Probe failures degrade to an empty
// thumbnail and nil duration; an upload failure fails the whole operation and
// is surfaced to the caller.
func (p *Pipeline) Upload(ctx context.Context, userID, fileName, contentType string, data []byte) (models.MediaItem, error) {
	kind := KindOf(contentType, fileName)

	// Video and audio probing needs a file path for ffmpeg.
	var probePath string
	if kind == models.MediaKindVideo || kind == models.MediaKindAudio {
		temp, err := os.CreateTemp("", "studio-upload-*"+filepath.Ext(fileName))
		if err != nil {
			return models.MediaItem{}, fmt.Errorf("stage upload for probing: %w", err)
		}
		defer os.Remove(temp.Name())
		if _, err := temp.Write(data); err != nil {
			temp.Close()
			return models.MediaItem{}, fmt.Errorf("stage upload for probing: %w", err)
		}
		temp.Close()
		probePath = temp.Name()
	}

	var (
		thumbnail string
		duration  *float64
		uploaded  assetstore.UploadResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := p.objects.Upload(gctx, userID, fileName, contentType, data)
		if err != nil {
			return fmt.Errorf("upload media bytes: %w", err)
		}
		uploaded = result
		return nil
	})
	g.Go(func() error {
		thumbnail = p.thumbnail(gctx, kind, contentType, data, probePath)
		return nil
	})
	g.Go(func() error {
		duration = p.duration(gctx, kind, probePath)
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.MediaItem{}, err
	}

	now := time.Now().UTC()
	item := models.MediaItem{
		ID:           uploaded.ID,
		UserID:       userID,
		Name:         fileName,
		Kind:         kind,
		ServerPath:   uploaded.ServerPath,
		Size:         uploaded.Size,
		LastModified: now,
		Thumbnail:    thumbnail,
		Duration:     duration,
		CreatedAt:    now,
	}

	if err := p.store.PutMediaItem(ctx, item); err != nil {
		// The object is uploaded; a broken index entry should not fail the
		// action. The row is recreated on the next upload of the same file.
		p.log.WithFields(logrus.Fields{"media_id": item.ID, "error": err.Error()}).Warn("Failed to index media item")
	}
	return item, nil
}

// thumbnail never fails: any probe error or timeout resolves to "".
func (p *Pipeline) thumbnail(ctx context.Context, kind models.MediaKind, contentType string, data []byte, probePath string) string {
	switch kind {
	case models.MediaKindImage:
		return dataURL(contentType, data)
	case models.MediaKindVideo:
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		length, err := p.prober.Duration(probeCtx, probePath)
		if err != nil {
			p.log.WithField("error", err.Error()).Debug("Thumbnail duration probe failed")
			return ""
		}
		at := time.Second
		if half := length / 2; half < at {
			at = half
		}
		frame, err := p.prober.Frame(probeCtx, probePath, at)
		if err != nil {
			p.log.WithField("error", err.Error()).Debug("Thumbnail frame extraction failed")
			return ""
		}
		return dataURL("image/jpeg", frame)
	}
	return ""
}

// duration probes audio/video length; nil on images, failures, and timeouts.
func (p *Pipeline) duration(ctx context.Context, kind models.MediaKind, probePath string) *float64 {
	if kind != models.MediaKindVideo && kind != models.MediaKindAudio {
		return nil
	}
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	length, err := p.prober.Duration(probeCtx, probePath)
	if err != nil {
		p.log.WithField("error", err.Error()).Debug("Duration probe failed")
		return nil
	}
	seconds := length.Seconds()
	return &seconds
}

// List returns the user's media index.
func (p *Pipeline) List(ctx context.Context, userID string) ([]models.MediaItem, error) {
	items, err := p.store.ListMediaItems(ctx, userID)
	if err != nil {
		p.log.WithField("error", err.Error()).Warn("Failed to list media index")
		return []models.MediaItem{}, nil
	}
	if items == nil {
		items = []models.MediaItem{}
	}
	return items, nil
}

// Delete removes the remote object first, then the local index entry. A
// remote failure leaves the index untouched so the item stays visible.
func (p *Pipeline) Delete(ctx context.Context, userID, fileID string) error {
	item, err := p.store.GetMediaItem(ctx, fileID)
	if err != nil {
		return fmt.Errorf("look up media item %s: %w", fileID, err)
	}
	if item == nil || item.UserID != userID {
		return ErrMediaNotFound
	}

	if err := p.objects.Remove(ctx, item.ServerPath); err != nil {
		return fmt.Errorf("remove remote object for %s: %w", fileID, err)
	}
	if err := p.store.DeleteMediaItem(ctx, fileID); err != nil {
		p.log.WithFields(logrus.Fields{"media_id": fileID, "error": err.Error()}).Warn("Remote object removed but index row remains")
	}
	return nil
}

// Clear removes all of a user's media, best effort per item: rows whose
// remote delete fails are kept in the index so the next clear retries them.
// It returns the number of removed and failed items and resolves immediately
// when the index is empty.
func (p *Pipeline) Clear(ctx context.Context, userID string) (removed, failed int, err error) {
	items, err := p.store.ListMediaItems(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("list media for clear: %w", err)
	}
	if len(items) == 0 {
		return 0, 0, nil
	}

	for _, item := range items {
		if removeErr := p.objects.Remove(ctx, item.ServerPath); removeErr != nil {
			p.log.WithFields(logrus.Fields{"media_id": item.ID, "error": removeErr.Error()}).Warn("Bulk clear: remote delete failed, keeping index row")
			failed++
			continue
		}
		if deleteErr := p.store.DeleteMediaItem(ctx, item.ID); deleteErr != nil {
			p.log.WithFields(logrus.Fields{"media_id": item.ID, "error": deleteErr.Error()}).Warn("Bulk clear: index delete failed")
			failed++
			continue
		}
		removed++
	}
	return removed, failed, nil
}

// KindOf classifies a file by content type, falling back to its extension.
func KindOf(contentType, fileName string) models.MediaKind {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return models.MediaKindVideo
	case strings.HasPrefix(contentType, "audio/"):
		return models.MediaKindAudio
	case strings.HasPrefix(contentType, "image/"):
		return models.MediaKindImage
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".mp4", ".mov", ".webm", ".mkv", ".avi":
		return models.MediaKindVideo
	case ".mp3", ".wav", ".aac", ".ogg", ".m4a":
		return models.MediaKindAudio
	}
	return models.MediaKindImage
}

func dataURL(contentType string, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}
