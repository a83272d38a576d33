package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/estate-service/internal/api/http/handlers"
	"github.com/estatehub/estate-service/internal/auth"
	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/service"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Auth           *handlers.AuthHandler
	Landlords      *handlers.LandlordsHandler
	Properties     *handlers.PropertiesHandler
	Users          *handlers.UsersHandler
	FieldAgents    *handlers.FieldAgentsHandler
	Activities     *handlers.ActivitiesHandler
	Reports        *handlers.ReportsHandler
	Public         *handlers.PublicHandler
	AuthMiddleware *auth.AuthMiddleware
	Activity       *service.ActivityService
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Snapshot)
	}

	public := app.Group("/public")
	public.Get("/properties", cfg.Properties.List)
	public.Get("/properties/:id", cfg.Properties.Get)
	public.Post("/landlords/register", cfg.Public.RegisterLandlord)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Post("/offline", cfg.AuthMiddleware.Handle, cfg.Auth.Offline)
	authGroup.Post("/heartbeat", cfg.AuthMiddleware.Handle, cfg.Auth.Heartbeat)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	tracker := activityTrackingMiddleware(cfg.Activity)
	staffOnly := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(auth.StaffRoles...), tracker}
	adminOnly := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(domain.UserRoleAdmin), tracker}

	landlords := api.Group("/landlords", staffOnly...)
	landlords.Get("", cfg.Landlords.List)
	landlords.Post("", cfg.Landlords.Create)
	landlords.Get("/:id", cfg.Landlords.Get)
	landlords.Put("/:id", cfg.Landlords.Update)
	landlords.Delete("/:id", cfg.Landlords.Delete)
	landlords.Patch("/:id/verify", cfg.Landlords.Verify)
	landlords.Patch("/:id/status", cfg.Landlords.UpdateStatus)

	properties := api.Group("/properties", staffOnly...)
	properties.Get("", cfg.Properties.List)
	properties.Post("", cfg.Properties.Create)
	properties.Get("/:id", cfg.Properties.Get)
	properties.Put("/:id", cfg.Properties.Update)
	properties.Delete("/:id", cfg.Properties.Delete)

	agents := api.Group("/field-agents", staffOnly...)
	agents.Get("", cfg.FieldAgents.List)
	agents.Post("", cfg.FieldAgents.Create)
	agents.Get("/:id", cfg.FieldAgents.Get)
	agents.Put("/:id", cfg.FieldAgents.Update)
	agents.Delete("/:id", cfg.FieldAgents.Delete)

	api.Group("/activities", staffOnly...).Get("", cfg.Activities.List)
	api.Group("/reports", staffOnly...).Get("/summary", cfg.Reports.Summary)

	users := api.Group("/users", adminOnly...)
	users.Get("", cfg.Users.List)
	users.Get("/online", cfg.Users.Online)
	users.Post("", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
}
