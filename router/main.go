package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/quiz-brain/handlers"
	job_handlers "github.com/sahilchouksey/quiz-brain/handlers/jobs"
	"github.com/sahilchouksey/quiz-brain/utils/middleware"
)

func SetupRoutes(app *fiber.App, jobHandler *job_handlers.JobHandler, healthHandler *handlers.HealthHandler, security middleware.SecurityConfig) {
	// Health check endpoint (public)
	app.Get("/ping", healthHandler.Ping)

	api := app.Group("/api/v1")
	api.Get("/health", healthHandler.Health)

	// Generation jobs
	jobs := api.Group("/jobs")
	jobs.Post("/", middleware.SubmitLimiter(security), jobHandler.CreateJob)
	jobs.Get("/:id", jobHandler.GetJob)
	jobs.Delete("/:id", jobHandler.CancelJob)
	jobs.Get("/:id/events", jobHandler.StreamJob)
	jobs.Get("/:id/artifact", jobHandler.GetArtifact)
}
