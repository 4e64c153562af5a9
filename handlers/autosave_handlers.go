package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"videostudio/internal/autosave"
	"videostudio/models"
	"videostudio/utils"
)

// SaveNow persists the current editor state immediately, bypassing the diff
// the periodic loop applies.
func (h *ApplicationHandler) SaveNow(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	s := h.Sessions.Get(projectID)

	blob, err := s.Snapshot()
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not serialize editor state")
	}
	if err := s.Saver().SaveNow(c.Context(), blob); err != nil {
		h.Logger.WithError(err).WithField("project_id", projectID).Error("Manual save failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Save failed")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"saved": true})
}

// CheckRecovery reports whether an autosave exists to offer for recovery.
// The check runs once per session; later calls report nothing.
func (h *ApplicationHandler) CheckRecovery(c *fiber.Ctx) error {
	s := h.Sessions.Get(c.Params("projectId"))
	rec, ok := s.Saver().CheckRecovery(c.Context())
	if !ok {
		return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"available": false})
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"available": true,
		"timestamp": rec.Timestamp,
	})
}

// RecoverAutosave loads the saved state into the session.
func (h *ApplicationHandler) RecoverAutosave(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	s := h.Sessions.Get(projectID)

	rec, err := s.Saver().Recover(c.Context())
	if err != nil {
		if errors.Is(err, autosave.ErrNoAutosave) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "No autosave to recover")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	var state models.EditorState
	if err := json.Unmarshal(rec.StateBlob, &state); err != nil {
		h.Logger.WithError(err).WithField("project_id", projectID).Error("Autosave blob is corrupt")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Autosave record is corrupt")
	}

	s.ApplyState(state)
	s.Saver().MarkLoaded()
	h.Logger.WithField("project_id", projectID).Info("Autosave recovered")
	return h.Timeline(c)
}

// DiscardAutosave deletes the saved state without loading it.
func (h *ApplicationHandler) DiscardAutosave(c *fiber.Ctx) error {
	s := h.Sessions.Get(c.Params("projectId"))
	if err := s.Saver().Discard(c.Context()); err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	s.Saver().MarkLoaded()
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"discarded": true})
}
