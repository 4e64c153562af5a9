package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"videostudio/internal/jobs"
	"videostudio/internal/render"
	"videostudio/internal/worker"
	"videostudio/utils"
)

type startRenderPayload struct {
	Src string `json:"src,omitempty"`
}

// StartRender launches a render attempt for the project's current
// composition. While an attempt is non-terminal the trigger is disabled and
// a second start gets 409.
func (h *ApplicationHandler) StartRender(c *fiber.Ctx) error {
	projectID := c.Params("projectId")

	var payload startRenderPayload
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid render payload")
		}
	}

	s := h.Sessions.Get(projectID)
	orch := s.Render()

	if orch.State().Status.Terminal() {
		// A finished or failed attempt is dismissed by starting a new one.
		orch.Reset()
	}

	input := s.RenderInput(payload.Src)
	if err := render.ValidateInput(input); err != nil {
		messages := utils.FormatValidationErrors(err)
		h.Logger.WithFields(map[string]interface{}{
			"project_id": projectID,
			"errors":     messages,
		}).Warn("Render input rejected")
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid render input")
	}

	// Claim the attempt before queueing it: a second start must conflict even
	// while the job is still waiting for a worker.
	if err := orch.Begin(); err != nil {
		return utils.RespondWithError(c, fiber.StatusConflict, "A render is already in progress")
	}

	job := jobs.NewRenderAttemptJob(projectID, input, orch)
	if err := h.Dispatcher.Submit(job); err != nil {
		orch.Reset()
		if errors.Is(err, worker.ErrQueueFull) {
			return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Render queue is full, try again shortly")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	h.Logger.WithField("project_id", projectID).Info("Render attempt queued")
	return utils.RespondWithJSON(c, fiber.StatusAccepted, orch.State())
}

// RenderState reports the current attempt: status, progress, and on success
// the output URL.
func (h *ApplicationHandler) RenderState(c *fiber.Ctx) error {
	s := h.Sessions.Get(c.Params("projectId"))
	return utils.RespondWithJSON(c, fiber.StatusOK, s.Render().State())
}

// ResetRender dismisses the current attempt so a retry can start. The backend
// job, if still running, is not cancelled.
func (h *ApplicationHandler) ResetRender(c *fiber.Ctx) error {
	s := h.Sessions.Get(c.Params("projectId"))
	s.Render().Reset()
	return utils.RespondWithJSON(c, fiber.StatusOK, s.Render().State())
}
