package http

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/paypoint/internal/interfaces/http/middleware"
	"github.com/orris-inc/paypoint/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.Logger(c.log.Named("http")))
	c.engine.Use(middleware.Recovery(c.log, map[string]gin.HandlerFunc{
		routes.CallbackPath: nil,
		routes.ReturnPath:   c.hdlrs.paymentHandler.RecoveredReturn,
	}))
	c.engine.Use(middleware.Metrics(c.metrics))
	c.engine.Use(middleware.SecurityHeaders())

	routes.SetupHealthRoutes(c.engine, &routes.HealthRouteConfig{
		HealthHandler:  c.hdlrs.healthHandler,
		MetricsHandler: c.metrics.Handler(),
	})

	routes.SetupPaymentRoutes(c.engine, &routes.PaymentRouteConfig{
		PaymentHandler:  c.hdlrs.paymentHandler,
		RedirectLimiter: c.redirectLimiter,
		AllowedOrigins:  c.cfg.Server.AllowedOrigins,
	})
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}
