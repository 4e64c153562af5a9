package models

import "time"

// EditorState is the snapshot autosave serializes: the overlay collection plus
// the global composition settings needed to restore the editor exactly.
type EditorState struct {
	Overlays       []Overlay `json:"overlays"`
	AspectRatio    string    `json:"aspectRatio"`
	ViewportWidth  int       `json:"viewportWidth"`
	ViewportHeight int       `json:"viewportHeight"`
}

// AutosaveRecord is the most recent persisted editor state for a project.
// One record per project id; each save overwrites the prior.
type AutosaveRecord struct {
	ProjectID string    `json:"project_id"`
	StateBlob []byte    `json:"state_blob"`
	Timestamp time.Time `json:"timestamp"`
}
