package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/handler"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Analysis *handler.AnalysisHandler
	Classify *handler.ClassifyHandler
	Quota    *handler.QuotaHandler
	Channel  *handler.ChannelHandler
	Sync     *handler.SyncHandler
	Stats    *handler.StatsHandler
	Health   *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Health checks (before API group, no rate limit)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)

	// Prometheus metrics
	app.Get("/metrics", handler.MetricsHandler())

	// API routes
	api := app.Group("/api")

	// Snapshot ingest
	api.Post("/videos/snapshots", h.Analysis.Ingest, middleware.NewIngestRateLimiter().Handler())

	// Analysis routes
	api.Post("/analysis", h.Analysis.Run, middleware.NewAnalysisRateLimiter().Handler())
	api.Get("/analysis/presets", h.Analysis.Presets)

	// Classification routes
	api.Post("/classify", h.Classify.Classify, middleware.NewClassifyRateLimiter().Handler())

	// Quota routes
	api.Get("/quota/:feature", h.Quota.GetStatus)

	// Channel routes
	api.Get("/channels/:channelId", h.Channel.GetByChannelID)

	// Sync routes
	syncLimiter := middleware.NewSyncRateLimiter()
	api.Get("/sync/delta", h.Sync.DeltaSync, syncLimiter.Handler())
	api.Get("/sync/full", h.Sync.FullSync, syncLimiter.Handler())

	// Stats routes
	api.Get("/stats", h.Stats.GetStats, middleware.NewStatsRateLimiter().Handler())
}
