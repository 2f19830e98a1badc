package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/scan-token-service/internal/api/http/handlers"
	"github.com/spec-kit/scan-token-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health           *handlers.HealthHandler
	Tokens           *handlers.TokensHandler
	Scans            *handlers.ScansHandler
	IssuerMiddleware *auth.IssuerMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Post("/tokens", cfg.IssuerMiddleware.Handle, cfg.Tokens.Issue)
	app.Post("/tokens/verify", cfg.Tokens.Verify)

	app.Post("/scans", cfg.Scans.Submit)
	app.Get("/scans/:deviceID", cfg.Scans.History)
}
