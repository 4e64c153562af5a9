package models

// OverlayType identifies what kind of content an overlay carries on the timeline.
type OverlayType string

const (
	OverlayTypeVideo OverlayType = "video"
	OverlayTypeImage OverlayType = "image"
	OverlayTypeText  OverlayType = "text"
	OverlayTypeAudio OverlayType = "audio"
	OverlayTypeShape OverlayType = "shape"
)

// ValidOverlayType reports whether t is one of the known overlay types.
func ValidOverlayType(t OverlayType) bool {
	switch t {
	case OverlayTypeVideo, OverlayTypeImage, OverlayTypeText, OverlayTypeAudio, OverlayTypeShape:
		return true
	}
	return false
}

// OverlayStyles holds the presentational attributes forwarded to the renderer.
// All fields are optional; nil means "renderer default".
type OverlayStyles struct {
	Opacity   *float64 `json:"opacity,omitempty"`
	Transform *string  `json:"transform,omitempty"`
	ZIndex    *int     `json:"zIndex,omitempty"`
}

// Overlay represents a timed, positioned element on the composition timeline.
// Field names follow the render service's wire format, so an overlay can be
// embedded directly in a render submission.
type Overlay struct {
	ID               int           `json:"id"`
	Type             OverlayType   `json:"type"`
	From             int           `json:"from"`             // frame offset, >= 0
	DurationInFrames int           `json:"durationInFrames"` // >= 1
	Left             float64       `json:"left"`
	Top              float64       `json:"top"`
	Width            float64       `json:"width"`  // >= 1
	Height           float64       `json:"height"` // >= 1
	Rotation         float64       `json:"rotation"` // degrees
	Row              int           `json:"row"`      // track index; lower rows render on top
	Styles           OverlayStyles `json:"styles,omitempty"`
	IsDragging       bool          `json:"isDragging,omitempty"` // transient gesture flag
	Src              string        `json:"src,omitempty"`        // media path or URL
	Content          string        `json:"content,omitempty"`    // text payload
}

// IsSpatial reports whether the overlay participates in drag/resize/rotate.
// Audio overlays have no on-canvas footprint.
func (o Overlay) IsSpatial() bool {
	return o.Type != OverlayTypeAudio
}
