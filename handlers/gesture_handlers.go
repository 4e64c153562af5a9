package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"videostudio/internal/gesture"
	"videostudio/internal/overlay"
	"videostudio/internal/session"
	"videostudio/utils"
)

type beginGesturePayload struct {
	Kind    gesture.Kind   `json:"kind"`
	Pointer gesture.Point  `json:"pointer"`
	Zoom    float64        `json:"zoom"`
	Corner  gesture.Corner `json:"corner,omitempty"`
}

type gesturePointerPayload struct {
	Pointer gesture.Point `json:"pointer"`
}

// BeginGesture opens a drag, resize, or rotate gesture on an overlay.
func (h *ApplicationHandler) BeginGesture(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	overlayID, err := c.ParamsInt("overlayId")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid overlay id")
	}

	var payload beginGesturePayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid gesture payload")
	}
	if payload.Zoom <= 0 {
		payload.Zoom = 1
	}

	s := h.Sessions.Get(projectID)
	if err := s.BeginGesture(payload.Kind, overlayID, payload.Pointer, payload.Zoom, payload.Corner); err != nil {
		switch {
		case errors.Is(err, overlay.ErrOverlayNotFound):
			return utils.RespondWithError(c, fiber.StatusNotFound, "Overlay not found")
		case errors.Is(err, gesture.ErrNotSpatial):
			return utils.RespondWithError(c, fiber.StatusUnprocessableEntity, "Overlay has no spatial footprint")
		case errors.Is(err, session.ErrGestureInProgress):
			return utils.RespondWithError(c, fiber.StatusConflict, "A gesture is already in progress")
		case errors.Is(err, gesture.ErrUnknownKind), errors.Is(err, gesture.ErrUnknownCorner):
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		default:
			return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"selected": overlayID})
}

// MoveGesture applies the current pointer position as live geometry.
func (h *ApplicationHandler) MoveGesture(c *fiber.Ctx) error {
	projectID := c.Params("projectId")

	var payload gesturePointerPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid gesture payload")
	}

	live, err := h.Sessions.Get(projectID).MoveGesture(payload.Pointer)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusConflict, "No gesture in progress")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, live)
}

// CommitGesture ends the gesture at the pointer-up position.
func (h *ApplicationHandler) CommitGesture(c *fiber.Ctx) error {
	projectID := c.Params("projectId")

	var payload gesturePointerPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid gesture payload")
	}

	final, err := h.Sessions.Get(projectID).CommitGesture(payload.Pointer)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusConflict, "No gesture in progress")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, final)
}
