// Package durable persists autosave records and the user media index in a
// service-local SQLite database. When the environment cannot provide durable
// storage, Probe degrades to a session-only in-memory store instead of
// failing the editor.
package durable

import (
	"context"
	"time"

	"videostudio/models"
)

// Store is the durable-store contract shared by the SQLite and in-memory
// implementations. Autosave rows are keyed by project id (last-write-wins);
// media rows are keyed by item id with a secondary index on user id.
type Store interface {
	SaveAutosave(ctx context.Context, projectID string, stateBlob []byte, timestamp time.Time) error
	// GetAutosave returns nil with no error when no record exists.
	GetAutosave(ctx context.Context, projectID string) (*models.AutosaveRecord, error)
	DeleteAutosave(ctx context.Context, projectID string) error

	PutMediaItem(ctx context.Context, item models.MediaItem) error
	// GetMediaItem returns nil with no error when no row exists.
	GetMediaItem(ctx context.Context, id string) (*models.MediaItem, error)
	ListMediaItems(ctx context.Context, userID string) ([]models.MediaItem, error)
	DeleteMediaItem(ctx context.Context, id string) error

	Close() error
}
