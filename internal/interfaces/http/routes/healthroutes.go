package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/paypoint/internal/interfaces/http/handlers"
)

// HealthRouteConfig holds dependencies for the operational routes.
type HealthRouteConfig struct {
	HealthHandler *handlers.HealthHandler
	// MetricsHandler is optional; nil disables /metrics.
	MetricsHandler http.Handler
}

// SetupHealthRoutes configures /health and /metrics.
func SetupHealthRoutes(engine *gin.Engine, cfg *HealthRouteConfig) {
	engine.GET("/health", cfg.HealthHandler.HealthCheck)

	if cfg.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}
}
