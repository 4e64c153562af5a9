package gesture

import "videostudio/models"

const (
	// baseZIndex anchors the stacking range; rows subtract from it so lower
	// rows always render on top regardless of selection.
	baseZIndex = 100

	rowZStep       = 10
	selectionBoost = 1
)

// ZIndex returns the render/outline z-index for an overlay. Selection adds a
// small boost without reordering tracks.
func ZIndex(o models.Overlay, selected bool) int {
	z := baseZIndex - o.Row*rowZStep
	if selected {
		z += selectionBoost
	}
	return z
}

// ShowsHandles reports whether selection handles and an outline render for
// the overlay. Audio overlays render neither.
func ShowsHandles(o models.Overlay) bool {
	return o.IsSpatial()
}
