package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/auth"
	"github.com/spec-kit/triage-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Triage         *handlers.TriageHandler
	Chat           *handlers.ChatHandler
	Monitor        *handlers.MonitorHandler
	Events         *handlers.EventsHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	api.Post("/triage/classify", auth.RequireScope(auth.ScopeIntake), cfg.Triage.Classify)
	api.Post("/tickets", auth.RequireScope(auth.ScopeIntake), cfg.Triage.CreateTicket)
	api.Get("/tickets/:id", auth.RequireScope(auth.ScopeIntake), cfg.Triage.GetTicket)
	api.Get("/sla/metrics", auth.RequireScope(auth.ScopeIntake), cfg.Triage.SLAMetrics)

	api.Post("/chat/turns", auth.RequireScope(auth.ScopeChat), cfg.Chat.HandleTurn)

	api.Post("/monitor/samples", auth.RequireScope(auth.ScopeMonitor), cfg.Monitor.IngestSample)
	api.Get("/monitor/alerts", auth.RequireScope(auth.ScopeMonitor), cfg.Monitor.ListAlertStates)

	api.Get("/events/stream", auth.RequireScope(auth.ScopeEvents), cfg.Events.Stream)
}
