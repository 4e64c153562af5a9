package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"videostudio/internal/jobs"
	"videostudio/internal/media"
	"videostudio/internal/worker"
	"videostudio/utils"
)

// UploadMedia ingests one uploaded file: store the bytes, probe duration,
// extract a thumbnail, and index the item for the user.
func (h *ApplicationHandler) UploadMedia(c *fiber.Ctx) error {
	userID := c.FormValue("user_id")
	if userID == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "user_id is required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "file is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not read uploaded file")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	item, err := h.Media.Upload(c.Context(), userID, fileHeader.Filename, contentType, data)
	if err != nil {
		h.Logger.WithError(err).WithFields(map[string]interface{}{
			"user_id":  userID,
			"filename": fileHeader.Filename,
		}).Error("Media upload failed")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Upload failed")
	}

	return utils.RespondWithJSON(c, fiber.StatusCreated, item)
}

// ListMedia returns the user's media library.
func (h *ApplicationHandler) ListMedia(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "user_id is required")
	}

	items, err := h.Media.List(c.Context(), userID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not list media")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, items)
}

// DeleteMedia removes one media item, remote object first.
func (h *ApplicationHandler) DeleteMedia(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "user_id is required")
	}
	fileID := c.Params("fileId")

	if err := h.Media.Delete(c.Context(), userID, fileID); err != nil {
		if errors.Is(err, media.ErrMediaNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Media item not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"deleted": fileID})
}

// ClearMedia queues removal of the user's whole library. Items whose remote
// delete fails stay indexed so the next clear retries them.
func (h *ApplicationHandler) ClearMedia(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "user_id is required")
	}

	job := jobs.NewMediaClearJob(userID, h.Media, h.Logger)
	if err := h.Dispatcher.Submit(job); err != nil {
		if errors.Is(err, worker.ErrQueueFull) {
			return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Job queue is full, try again shortly")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusAccepted, fiber.Map{"clearing": userID})
}
