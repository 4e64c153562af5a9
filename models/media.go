package models

import "time"

// MediaKind classifies a user media item.
type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindImage MediaKind = "image"
	MediaKindAudio MediaKind = "audio"
)

// MediaItem is one entry in a user's local media index. The raw bytes live in
// the remote object store under ServerPath; the index row carries everything
// the editor needs to list and place the asset.
type MediaItem struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Kind         MediaKind `json:"kind"`
	ServerPath   string    `json:"server_path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	Thumbnail    string    `json:"thumbnail,omitempty"` // embeddable data URL, empty when unavailable
	Duration     *float64  `json:"duration,omitempty"`  // seconds; nil for images and failed probes
	CreatedAt    time.Time `json:"created_at"`
}
