// Package handlers exposes the HTTP surface of the editor service over Fiber.
package handlers

import (
	"github.com/sirupsen/logrus"

	"videostudio/internal/media"
	"videostudio/internal/session"
	"videostudio/internal/worker"
)

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Logger     *logrus.Logger
	Sessions   *session.Manager
	Media      *media.Pipeline
	Dispatcher *worker.Dispatcher
}

// NewApplicationHandler creates an ApplicationHandler with the given dependencies.
func NewApplicationHandler(logger *logrus.Logger, sessions *session.Manager, pipeline *media.Pipeline, dispatcher *worker.Dispatcher) *ApplicationHandler {
	return &ApplicationHandler{
		Logger:     logger,
		Sessions:   sessions,
		Media:      pipeline,
		Dispatcher: dispatcher,
	}
}
