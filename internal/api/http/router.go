package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helli-it/support-tracker/internal/api/http/handlers"
	"github.com/helli-it/support-tracker/internal/auth"
	"github.com/helli-it/support-tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Students       *handlers.StudentsHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	authed := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	authed.Post("/auth/password/change", cfg.Users.ChangePassword)
	authed.Get("/auth/me", cfg.Users.Me)

	tickets := authed.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/export", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.Export)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.EditTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/department", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.Reassign)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.DeleteTicket)

	authed.Get("/departments", cfg.Users.ListDepartments)

	admin := authed.Group("", auth.RequireRole(domain.RoleAdmin))
	admin.Post("/departments", cfg.Users.CreateDepartment)
	admin.Post("/users", cfg.Users.CreateUser)
	admin.Get("/users", cfg.Users.ListUsers)
	admin.Delete("/users/:id", cfg.Users.DeleteUser)

	admin.Post("/students", cfg.Students.Resolve)
	admin.Post("/students/import", cfg.Students.Import)
	admin.Get("/students/export", cfg.Students.Export)

	admin.Get("/reports", cfg.Reports.Get)
	admin.Get("/health/stats", cfg.Health.Stats)
}
