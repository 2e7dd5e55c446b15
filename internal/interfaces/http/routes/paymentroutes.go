package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/paypoint/internal/interfaces/http/handlers"
	"github.com/orris-inc/paypoint/internal/interfaces/http/middleware"
)

// Gateway-facing paths. They keep the plugin route names the gateway
// accounts are configured with.
const (
	PaymentPluginPrefix = "/Plugins/PaymentPayPoint"
	ReturnPath          = PaymentPluginPrefix + "/Return"
	CallbackPath        = PaymentPluginPrefix + "/Callback"
)

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler *handlers.PaymentHandler
	// RedirectLimiter is optional; nil leaves session creation unthrottled.
	RedirectLimiter *middleware.RateLimiter
	// AllowedOrigins may read AdditionalFee from the browser.
	AllowedOrigins []string
}

// SetupPaymentRoutes configures the gateway and checkout routes.
func SetupPaymentRoutes(engine *gin.Engine, cfg *PaymentRouteConfig) {
	plugin := engine.Group(PaymentPluginPrefix)
	{
		plugin.GET("/Return", cfg.PaymentHandler.Return)
		plugin.POST("/Callback", cfg.PaymentHandler.Callback)

		fee := plugin.Group("/AdditionalFee", middleware.CORS(cfg.AllowedOrigins))
		fee.GET("", cfg.PaymentHandler.AdditionalFee)
		fee.OPTIONS("", func(*gin.Context) {})

		redirect := []gin.HandlerFunc{cfg.PaymentHandler.Redirect}
		if cfg.RedirectLimiter != nil {
			redirect = append([]gin.HandlerFunc{cfg.RedirectLimiter.Limit()}, redirect...)
		}
		plugin.GET("/Redirect/:orderGuid", redirect...)
	}
}
