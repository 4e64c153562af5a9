package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"videostudio/config"
	"videostudio/handlers"
	"videostudio/internal/assetstore"
	"videostudio/internal/durable"
	"videostudio/internal/media"
	"videostudio/internal/render"
	"videostudio/internal/session"
	"videostudio/internal/worker"
	"videostudio/middleware"
)

func main() {
	log := config.InitLogger()
	cfg := config.Load(log)

	store := durable.Probe(cfg.DataDir, log)
	defer store.Close()

	var backend render.Backend
	switch cfg.RenderStrategy {
	case config.RenderStrategyManaged:
		managed, err := render.NewManagedBackend(cfg.SupabaseURL, cfg.SupabaseKey, log)
		if err != nil {
			log.WithError(err).Fatal("Could not initialize managed render backend")
		}
		backend = managed
	default:
		backend = render.NewSyncServiceBackend(cfg.RenderServiceURL, log)
	}
	log.WithField("strategy", cfg.RenderStrategy).Info("Render backend ready")

	objects, err := assetstore.New(cfg.SupabaseURL, cfg.SupabaseKey, cfg.MediaBucket, log)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize asset store")
	}
	pipeline := media.NewPipeline(store, objects, media.FFmpegProber{}, log)

	sessions := session.NewManager(store, backend, cfg.AutosaveInterval, log)
	defer sessions.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := worker.NewDispatcher(cfg.WorkerCount, cfg.JobQueueSize, log)
	dispatcher.Run(ctx)
	defer dispatcher.Stop()

	h := handlers.NewApplicationHandler(log, sessions, pipeline, dispatcher)

	app := fiber.New(fiber.Config{
		BodyLimit: 512 * 1024 * 1024, // large uploads
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Video studio is healthy",
		})
	})

	apiV1 := app.Group("/api/v1")

	project := apiV1.Group("/projects/:projectId")
	project.Get("/timeline", h.Timeline)
	project.Post("/overlays", h.AddOverlay)
	project.Put("/overlays", h.ResetOverlays)
	project.Patch("/overlays/:overlayId", h.UpdateOverlay)
	project.Delete("/overlays/:overlayId", h.DeleteOverlay)
	project.Post("/overlays/:overlayId/duplicate", h.DuplicateOverlay)
	project.Post("/overlays/:overlayId/split", h.SplitOverlay)
	project.Delete("/rows/:row", h.DeleteRow)
	project.Post("/undo", h.Undo)
	project.Post("/redo", h.Redo)

	project.Post("/overlays/:overlayId/gesture", h.BeginGesture)
	project.Patch("/gesture", h.MoveGesture)
	project.Post("/gesture/commit", h.CommitGesture)

	project.Post("/render", h.StartRender)
	project.Get("/render", h.RenderState)
	project.Delete("/render", h.ResetRender)

	project.Post("/autosave", h.SaveNow)
	project.Get("/autosave", h.CheckRecovery)
	project.Post("/autosave/recover", h.RecoverAutosave)
	project.Delete("/autosave", h.DiscardAutosave)

	apiV1.Post("/media/upload", h.UploadMedia)
	apiV1.Get("/media", h.ListMedia)
	apiV1.Delete("/media/:fileId", h.DeleteMedia)
	apiV1.Delete("/media", h.ClearMedia)

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("Shutdown failed")
		}
	}()

	log.WithField("addr", cfg.HTTPAddr).Info("Starting video studio")
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
