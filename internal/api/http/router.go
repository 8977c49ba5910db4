package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/is0060hf/qa-web-system-sub002/internal/api/http/handlers"
	"github.com/is0060hf/qa-web-system-sub002/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Projects       *handlers.ProjectsHandler
	Questions      *handlers.QuestionsHandler
	Notifications  *handlers.NotificationsHandler
	Internal       *handlers.InternalHandler
	AuthMiddleware *auth.AuthMiddleware
	SchedulerKey   string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	internal := app.Group("/internal", auth.RequireAPIKey(cfg.SchedulerKey))
	internal.Post("/deadline-scan", cfg.Internal.DeadlineScan)
	internal.Get("/metrics", cfg.Internal.Metrics)

	projects := app.Group("/projects", cfg.AuthMiddleware.Handle)
	projects.Get("/:id/access", cfg.Projects.Access)
	projects.Get("/:id/manage", cfg.Projects.Manage)

	questions := app.Group("/questions", cfg.AuthMiddleware.Handle)
	questions.Patch("/:id/status", cfg.Questions.ChangeStatus)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
}
