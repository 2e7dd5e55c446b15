package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/paypoint/internal/application/payment/paymentgateway"
	paymentUsecases "github.com/orris-inc/paypoint/internal/application/payment/usecases"
	"github.com/orris-inc/paypoint/internal/infrastructure/cache"
	"github.com/orris-inc/paypoint/internal/infrastructure/email"
	"github.com/orris-inc/paypoint/internal/infrastructure/metrics"
	"github.com/orris-inc/paypoint/internal/infrastructure/repository"
	"github.com/orris-inc/paypoint/internal/interfaces/http/handlers"
	"github.com/orris-inc/paypoint/internal/interfaces/http/middleware"
	sharedConfig "github.com/orris-inc/paypoint/internal/shared/config"
	sharedDB "github.com/orris-inc/paypoint/internal/shared/db"
	"github.com/orris-inc/paypoint/internal/shared/logger"
	"github.com/orris-inc/paypoint/internal/shared/services/markdown"
)

const redisPingTimeout = 5 * time.Second

// ============================================================
// Section 1: Infrastructure - Redis, Metrics, Repositories
// ============================================================

// initInfrastructure connects Redis when enabled and builds the metrics
// collector and the repositories.
func (c *Container) initInfrastructure() error {
	if c.cfg.Redis.Enabled {
		client, err := initRedis(&c.cfg.Redis, c.log)
		if err != nil {
			return err
		}
		c.redis = client
	}

	c.metrics = metrics.NewCollector()

	c.repos = &repositories{
		orderRepo:    repository.NewOrderRepository(c.db),
		callbackRepo: repository.NewPaymentCallbackRepository(c.db),
		txManager:    sharedDB.NewTransactionManager(c.db),
	}

	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *sharedConfig.RedisConfig, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Infow("Redis connection established successfully", "addr", cfg.GetAddr())

	return redisClient, nil
}

// ============================================================
// Section 2: Payment - Gateway, Locker, UseCases, Notifier
// ============================================================

func (c *Container) initPayment() error {
	cfg := c.cfg
	log := c.log

	gateway, err := newGateway(cfg.PayPoint, log)
	if err != nil {
		return err
	}
	c.gateway = gateway

	handleCallbackUC := paymentUsecases.NewHandlePaymentCallbackUseCase(
		c.repos.orderRepo,
		gateway,
		c.repos.txManager,
		c.newOrderLocker(),
		log.Named("payment_callback"),
	)
	handleCallbackUC.SetCallbackLog(c.repos.callbackRepo)
	handleCallbackUC.SetMetrics(c.metrics)

	if cfg.Email.Enabled {
		handleCallbackUC.SetNotifier(email.NewSMTPEmailService(cfg.Email, log.Named("email")))
		log.Infow("paid order notifications enabled", "operators", len(cfg.Email.OperatorEmails))
	}

	initiatePaymentUC := paymentUsecases.NewInitiatePaymentUseCase(
		c.repos.orderRepo,
		gateway,
		log.Named("payment_initiation"),
		paymentUsecases.PaymentConfig{StoreLocation: cfg.Server.StoreLocation()},
	)
	initiatePaymentUC.SetMetrics(c.metrics)

	c.ucs = &allUseCases{
		handleCallbackUC:  handleCallbackUC,
		initiatePaymentUC: initiatePaymentUC,
	}

	log.Infow("payment gateway configured", "variant", gateway.Variant())
	return nil
}

// newGateway returns the gateway for the configured PayPoint generation.
func newGateway(cfg sharedConfig.PayPointConfig, log logger.Interface) (paymentgateway.PaymentGateway, error) {
	switch cfg.Variant {
	case sharedConfig.VariantLegacy:
		return paymentgateway.NewLegacyGateway(cfg.Legacy, log.Named("legacy_gateway")), nil
	case sharedConfig.VariantREST:
		return paymentgateway.NewRESTGateway(cfg.REST, log.Named("rest_gateway")), nil
	default:
		return nil, fmt.Errorf("unknown paypoint variant %q", cfg.Variant)
	}
}

// newOrderLocker shares the per-order lock across instances when Redis is
// available and falls back to an in-process lock otherwise.
func (c *Container) newOrderLocker() paymentUsecases.OrderLocker {
	lockCfg := c.cfg.PayPoint.Lock
	if c.redis != nil {
		return cache.NewRedisOrderLocker(c.redis, lockCfg.TTL(), lockCfg.Wait(), c.log.Named("order_lock"))
	}
	c.log.Warnw("redis disabled, order locks are local to this instance")
	return cache.NewLocalOrderLocker(lockCfg.Wait())
}

// ============================================================
// Section 3: Handlers and middlewares
// ============================================================

func (c *Container) initHandlers() {
	cfg := c.cfg
	log := c.log

	healthHandler := handlers.NewHealthHandler(cfg.PayPoint.Variant)
	healthHandler.AddCheck("database", func(ctx context.Context) error {
		sqlDB, err := c.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if c.redis != nil {
		healthHandler.AddCheck("redis", func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		})
	}

	c.hdlrs = &allHandlers{
		paymentHandler: handlers.NewPaymentHandler(
			c.ucs.handleCallbackUC,
			c.ucs.initiatePaymentUC,
			markdown.NewRenderer(),
			cfg.PayPoint,
			log.Named("payment_handler"),
		),
		healthHandler: healthHandler,
	}

	if c.redis != nil && cfg.Server.RedirectRateLimit > 0 {
		c.redirectLimiter = middleware.NewRateLimiter(c.redis, "redirect", cfg.Server.RedirectRateLimit, time.Minute, log)
	}
}
