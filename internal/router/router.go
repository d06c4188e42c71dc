package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/phSch08/EvaP/internal/config"
	"github.com/phSch08/EvaP/internal/handler"
	"github.com/phSch08/EvaP/internal/middleware"
	"github.com/phSch08/EvaP/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler       *handler.CourseHandler
	ReviewHandler       *handler.ReviewHandler
	SemesterHandler     *handler.SemesterHandler
	NotificationHandler *handler.NotificationHandler
	UserHandler         *handler.UserHandler
	ActivityHandler     *handler.ActivityHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Courses: lifecycle, derived queries, results
	if deps.CourseHandler != nil {
		courses := app.Group("/api/v1/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
	}

	// Staff surface: review, archival, notifications, login keys, audit
	staff := app.Group("/api/v1/staff", jwtMiddleware, middleware.RequireRole("manager", "reviewer"))

	if deps.ReviewHandler != nil {
		deps.ReviewHandler.Register(staff)
	}

	if deps.SemesterHandler != nil {
		deps.SemesterHandler.Register(staff)
	}

	if deps.NotificationHandler != nil {
		notifications := staff.Group("/notifications")
		deps.NotificationHandler.Register(notifications)
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(staff)
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(staff)
	}
}
