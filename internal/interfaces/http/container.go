package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/paypoint/internal/application/payment/paymentgateway"
	"github.com/orris-inc/paypoint/internal/infrastructure/config"
	"github.com/orris-inc/paypoint/internal/infrastructure/metrics"
	"github.com/orris-inc/paypoint/internal/interfaces/http/middleware"
	"github.com/orris-inc/paypoint/internal/shared/logger"
)

// Container holds the infrastructure components, repositories, use cases
// and handlers of the payment service. It wires everything together and
// releases what it opened in Shutdown.
type Container struct {
	// Core infrastructure
	engine  *gin.Engine
	db      *gorm.DB
	cfg     *config.Config
	log     logger.Interface
	redis   *redis.Client // nil when redis.enabled is false
	metrics *metrics.Collector

	// Repositories
	repos *repositories

	// Gateway for the configured variant
	gateway paymentgateway.PaymentGateway

	// Use cases
	ucs *allUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	redirectLimiter *middleware.RateLimiter
}

// NewContainer creates a Container with all dependencies wired together.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, Metrics, Repositories
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Payment - Gateway, Locker, UseCases, Notifier
	if err := c.initPayment(); err != nil {
		c.Shutdown()
		return nil, err
	}

	// Section 3: Handlers and middlewares
	c.initHandlers()

	return c, nil
}

// Shutdown releases the connections opened by the container. The database
// pool belongs to the caller.
func (c *Container) Shutdown() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}
