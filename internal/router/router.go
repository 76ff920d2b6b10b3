package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vidyadoc/slc-api/internal/config"
	"github.com/vidyadoc/slc-api/internal/handler"
	"github.com/vidyadoc/slc-api/internal/middleware"
	"github.com/vidyadoc/slc-api/internal/observability"
	"github.com/vidyadoc/slc-api/internal/policy"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	SchoolHandler      *handler.SchoolHandler
	StudentHandler     *handler.StudentHandler
	CertificateHandler *handler.CertificateHandler
	AuditHandler       *handler.AuditHandler
	JWTMiddleware      fiber.Handler
	RoleRefresh        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided middlewares, or no-ops if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	roleRefresh := deps.RoleRefresh
	if roleRefresh == nil {
		roleRefresh = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", cfg.RateLimitPerMinute, time.Minute))
		deps.AuthHandler.RegisterPublic(auth)

		protected := auth.Group("", jwtMiddleware, roleRefresh)
		deps.AuthHandler.RegisterProtected(protected)
	}

	records := api.Group("", jwtMiddleware, roleRefresh,
		middleware.RequireRole(policy.RoleUser, policy.RoleAdmin, policy.RoleSuper))

	if deps.SchoolHandler != nil {
		deps.SchoolHandler.Register(records.Group("/schools"))
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(records.Group("/students"))
	}
	if deps.CertificateHandler != nil {
		deps.CertificateHandler.Register(records.Group("/certificates"))
	}

	// Audit trail is staff-only regardless of record visibility rules.
	if deps.AuditHandler != nil {
		audit := api.Group("/audit", jwtMiddleware, roleRefresh,
			middleware.RequireRole(policy.RoleAdmin, policy.RoleSuper))
		deps.AuditHandler.Register(audit)
	}
}
