package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Every protected route passes through
// the auth middleware and a role guard before reaching a handler.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/auth/login")
	})

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/logout", cfg.Auth.Logout)

	user := app.Group("/user", cfg.AuthMiddleware.Handle, auth.RequireUser())
	user.Get("/dashboard", cfg.Tickets.Dashboard)
	user.Post("/ticket", cfg.Tickets.CreateTicket)
	user.Get("/ticket/:id", cfg.Tickets.GetTicket)
	user.Delete("/ticket/:id", cfg.Tickets.DeleteTicket)
	user.Post("/ticket/:id/comment", cfg.Tickets.AddComment)
	user.Put("/ticket/:id/status", cfg.Tickets.UpdateStatus)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/dashboard", cfg.Admin.Dashboard)
	admin.Put("/ticket/:id/status", cfg.Admin.UpdateStatus)
}
