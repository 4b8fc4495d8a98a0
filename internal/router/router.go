package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hackeval-go-api/internal/config"
	"github.com/noah-isme/hackeval-go-api/internal/handler"
	"github.com/noah-isme/hackeval-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler *handler.SubmissionHandler
	HackathonHandler  *handler.HackathonHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.HackathonHandler != nil {
		hackathons := api.Group("/hackathons")
		deps.HackathonHandler.Register(hackathons)

		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.RegisterHackathonRoutes(hackathons)
		}
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions")
		deps.SubmissionHandler.Register(submissions)
	}
}
