package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/andray-nkhatel/schoolerp-api/internal/config"
	"github.com/andray-nkhatel/schoolerp-api/internal/handler"
	"github.com/andray-nkhatel/schoolerp-api/internal/middleware"
	"github.com/andray-nkhatel/schoolerp-api/internal/models"
	"github.com/andray-nkhatel/schoolerp-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ReportCardHandler *handler.ReportCardHandler
	ScoreHandler      *handler.ScoreHandler
	AnalysisHandler   *handler.AnalysisHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	staffOnly := middleware.RequireRole(models.RoleAdmin, models.RoleTeacher)

	if deps.ReportCardHandler != nil {
		// Grade-wide generation is expensive; cap how often one user can
		// trigger it.
		app.Use("/api/v1/report-cards/batch", middleware.RateLimit("report-card-batch", 3, time.Minute))

		cards := app.Group("/api/v1/report-cards", jwtMiddleware, staffOnly)
		deps.ReportCardHandler.Register(cards, middleware.RequireRole(models.RoleAdmin))
	}

	if deps.ScoreHandler != nil {
		scores := app.Group("/api/v1/scores", jwtMiddleware, staffOnly)
		deps.ScoreHandler.Register(scores)
	}

	if deps.AnalysisHandler != nil {
		analysis := app.Group("/api/v1/analysis", jwtMiddleware, staffOnly)
		deps.AnalysisHandler.Register(analysis)
	}

	if deps.ActivityHandler != nil {
		activity := app.Group("/api/v1/activity", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.ActivityHandler.Register(activity)
	}
}
