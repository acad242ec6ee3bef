package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/codebuildervaibhav/dreamwhisper/internal/storage"
)

// AppName is reported by the health endpoint and the server banner.
const AppName = "DreamWhisper API"

// Deps are the collaborators the HTTP surface is built from. DB and Logs
// are optional; their routes are omitted when nil.
type Deps struct {
	Pool      Submitter
	DB        *storage.MetadataDB
	Logs      *LogBuffer
	MaxSizeMB int
}

// NewApp builds the Fiber app with middleware and every route
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   AppName,
		BodyLimit: (deps.MaxSizeMB + 1) * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"name":   AppName,
		})
	})

	app.Post("/api/transcribe", NewTranscribeHandler(deps.Pool, deps.MaxSizeMB).Handle)
	app.Post("/api/transcribe/gdrive", NewGDriveHandler(deps.Pool, deps.MaxSizeMB).Handle)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/transcribe", websocket.New(NewStreamHandler(deps.Pool).Handle))

	if deps.DB != nil {
		artifacts := NewArtifactsHandler(deps.DB)
		app.Get("/api/artifacts", artifacts.List)
		app.Get("/api/transcripts/:id/text", artifacts.TranscriptText)
	}

	if deps.Logs != nil {
		app.Get("/logs", deps.Logs.Handle)
	}

	return app
}
