package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"videostudio/internal/gesture"
	"videostudio/internal/overlay"
	"videostudio/models"
	"videostudio/utils"
)

// AddOverlay appends a new overlay to the project's timeline.
func (h *ApplicationHandler) AddOverlay(c *fiber.Ctx) error {
	projectID := c.Params("projectId")

	var payload models.Overlay
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid overlay payload")
	}
	if !models.ValidOverlayType(payload.Type) {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown overlay type %q", payload.Type))
	}

	added := h.Sessions.Get(projectID).AddOverlay(payload)
	h.Logger.WithFields(map[string]interface{}{
		"project_id": projectID,
		"overlay_id": added.ID,
		"type":       added.Type,
	}).Info("Overlay added")
	return utils.RespondWithJSON(c, fiber.StatusCreated, added)
}

// overlayPatch carries partial overlay updates. Pointers distinguish an
// omitted field from an explicit zero.
type overlayPatch struct {
	Type             *models.OverlayType   `json:"type,omitempty"`
	From             *int                  `json:"from,omitempty"`
	DurationInFrames *int                  `json:"durationInFrames,omitempty"`
	Left             *float64              `json:"left,omitempty"`
	Top              *float64              `json:"top,omitempty"`
	Width            *float64              `json:"width,omitempty"`
	Height           *float64              `json:"height,omitempty"`
	Rotation         *float64              `json:"rotation,omitempty"`
	Row              *int                  `json:"row,omitempty"`
	Src              *string               `json:"src,omitempty"`
	Content          *string               `json:"content,omitempty"`
	Styles           *models.OverlayStyles `json:"styles,omitempty"`
}

func (p overlayPatch) apply(o models.Overlay) models.Overlay {
	if p.Type != nil {
		o.Type = *p.Type
	}
	if p.From != nil {
		o.From = *p.From
	}
	if p.DurationInFrames != nil {
		o.DurationInFrames = *p.DurationInFrames
	}
	if p.Left != nil {
		o.Left = *p.Left
	}
	if p.Top != nil {
		o.Top = *p.Top
	}
	if p.Width != nil {
		o.Width = *p.Width
	}
	if p.Height != nil {
		o.Height = *p.Height
	}
	if p.Rotation != nil {
		o.Rotation = *p.Rotation
	}
	if p.Row != nil {
		o.Row = *p.Row
	}
	if p.Src != nil {
		o.Src = *p.Src
	}
	if p.Content != nil {
		o.Content = *p.Content
	}
	if p.Styles != nil {
		o.Styles = *p.Styles
	}
	return o
}

// UpdateOverlay applies a partial update to one overlay.
func (h *ApplicationHandler) UpdateOverlay(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	overlayID, err := c.ParamsInt("overlayId")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid overlay id")
	}

	var patch overlayPatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid overlay patch")
	}
	if patch.Type != nil && !models.ValidOverlayType(*patch.Type) {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown overlay type %q", *patch.Type))
	}

	updated, ok := h.Sessions.Get(projectID).ChangeOverlay(overlayID, patch.apply)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Overlay not found")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, updated)
}

// DeleteOverlay removes one overlay from the timeline.
func (h *ApplicationHandler) DeleteOverlay(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	overlayID, err := c.ParamsInt("overlayId")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid overlay id")
	}
	if !h.Sessions.Get(projectID).DeleteOverlay(overlayID) {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Overlay not found")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"deleted": overlayID})
}

// DuplicateOverlay clones one overlay with a small spatial and temporal offset.
func (h *ApplicationHandler) DuplicateOverlay(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	overlayID, err := c.ParamsInt("overlayId")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid overlay id")
	}
	clone, err := h.Sessions.Get(projectID).DuplicateOverlay(overlayID)
	if err != nil {
		if errors.Is(err, overlay.ErrOverlayNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Overlay not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, clone)
}

type splitPayload struct {
	AtFrame int `json:"at_frame"`
}

// SplitOverlay cuts one overlay in two at a frame strictly inside its range.
func (h *ApplicationHandler) SplitOverlay(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	overlayID, err := c.ParamsInt("overlayId")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid overlay id")
	}

	var payload splitPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid split payload")
	}

	if err := h.Sessions.Get(projectID).SplitOverlay(overlayID, payload.AtFrame); err != nil {
		switch {
		case errors.Is(err, overlay.ErrOverlayNotFound):
			return utils.RespondWithError(c, fiber.StatusNotFound, "Overlay not found")
		case errors.Is(err, overlay.ErrSplitOutOfRange):
			return utils.RespondWithError(c, fiber.StatusUnprocessableEntity, err.Error())
		default:
			return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	return h.Timeline(c)
}

// DeleteRow removes every overlay on one track.
func (h *ApplicationHandler) DeleteRow(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	row, err := c.ParamsInt("row")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid row")
	}
	h.Sessions.Get(projectID).DeleteRow(row)
	return h.Timeline(c)
}

type resetPayload struct {
	Overlays []models.Overlay `json:"overlays"`
}

// ResetOverlays replaces the whole collection, used by project load.
func (h *ApplicationHandler) ResetOverlays(c *fiber.Ctx) error {
	projectID := c.Params("projectId")

	var payload resetPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid overlays payload")
	}
	for _, o := range payload.Overlays {
		if !models.ValidOverlayType(o.Type) {
			return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown overlay type %q", o.Type))
		}
	}

	h.Sessions.Get(projectID).ResetOverlays(payload.Overlays)
	return h.Timeline(c)
}

// overlayView is an overlay with its render-time stacking resolved.
type overlayView struct {
	models.Overlay
	ZIndex      int  `json:"zIndex"`
	ShowHandles bool `json:"showHandles"`
}

// Timeline returns the current collection together with the derived duration
// and stacking order.
func (h *ApplicationHandler) Timeline(c *fiber.Ctx) error {
	s := h.Sessions.Get(c.Params("projectId"))
	overlays, duration := s.Timeline()
	selected := s.SelectedID()

	views := make([]overlayView, 0, len(overlays))
	for _, o := range overlays {
		isSelected := o.ID == selected
		views = append(views, overlayView{
			Overlay:     o,
			ZIndex:      gesture.ZIndex(o, isSelected),
			ShowHandles: isSelected && gesture.ShowsHandles(o),
		})
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"overlays":         views,
		"durationInFrames": duration,
		"fps":              overlay.FPS,
		"selected":         selected,
		"canUndo":          s.CanUndo(),
		"canRedo":          s.CanRedo(),
	})
}

// Undo steps the timeline back one committed snapshot.
func (h *ApplicationHandler) Undo(c *fiber.Ctx) error {
	s := h.Sessions.Get(c.Params("projectId"))
	if _, ok := s.Undo(); !ok {
		return utils.RespondWithError(c, fiber.StatusConflict, "Nothing to undo")
	}
	return h.Timeline(c)
}

// Redo steps the timeline forward one committed snapshot.
func (h *ApplicationHandler) Redo(c *fiber.Ctx) error {
	s := h.Sessions.Get(c.Params("projectId"))
	if _, ok := s.Redo(); !ok {
		return utils.RespondWithError(c, fiber.StatusConflict, "Nothing to redo")
	}
	return h.Timeline(c)
}
