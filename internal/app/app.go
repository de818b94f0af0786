// Package app wires configuration, storage, messaging and HTTP routes into a runnable service.
package app

import (
	"context"
	"fmt"
	"time"

	"lapak/internal/cache"
	"lapak/internal/config"
	"lapak/internal/database"
	"lapak/internal/handlers"
	"lapak/internal/metrics"
	"lapak/internal/middleware"
	"lapak/internal/repositories"
	"lapak/internal/services"
	"lapak/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App is the assembled service.
type App struct {
	Fiber *fiber.App
	DB    *gorm.DB

	Auth   *services.AuthService
	Items  *services.ItemService
	Orders *services.OrderService
	Carts  *services.CartService

	cfg      config.Config
	uow      *repositories.GORMUnitOfWork
	mq       *rabbitmq.Client
	redis    *redis.Client
	registry *prometheus.Registry
	logger   *log.Logger
}

// New opens the database and optional integrations named in cfg and builds the HTTP app.
// A nil logger is built from cfg. RabbitMQ and Redis failures are logged and the service runs without them.
func New(cfg config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = NewLogger(cfg)
	}

	db, err := database.Open(database.Config{
		Driver: cfg.DBDriver,
		DSN:    cfg.DatabaseDSN,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		DB:       db,
		cfg:      cfg,
		uow:      repositories.NewGORMUnitOfWork(db),
		registry: prometheus.NewRegistry(),
		logger:   logger,
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repos := a.uow.Repos()
	var stores services.StoreLookup = repos.Stores
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			logger.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unreachable, store lookups fall back to the database")
		}
		cancel()
		stores = cache.NewCachedStores(
			repos.Stores,
			cache.NewRedisStoreCache(a.redis, cfg.StoreCacheTTL),
			logger.WithField("component", "store-cache"),
		)
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger.WithField("component", "rabbitmq"))
		if err != nil {
			logger.WithError(err).Warn("order events disabled")
		} else {
			a.mq = mq
			publisher = mq
		}
	}

	orderMetrics := metrics.NewOrderMetricsWithRegisterer(a.registry)
	a.Auth = services.NewAuthService(repos.Users, cfg.JWTSecret, logger.WithField("component", "auth-service"))
	a.Items = services.NewItemService(repos.Items, stores)
	a.Orders = services.NewOrderService(a.uow, stores, publisher, orderMetrics, logger.WithField("component", "order-service"))
	a.Carts = services.NewCartService(a.uow, a.Orders, stores, orderMetrics, logger.WithField("component", "cart-service"))

	a.Fiber = a.routes()
	return a, nil
}

func (a *App) routes() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "lapak",
		ErrorHandler: handlers.NewErrorHandler(a.logger.WithField("component", "http")),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{Output: a.logger.Out}))

	app.Get("/health", a.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	apiV1 := app.Group("/api/v1")

	// Public routes go first: the protected group below matches every /api/v1 path.
	handlers.NewItemHandler(a.Items).RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(a.Auth))
	handlers.NewCartHandler(a.Carts).RegisterRoutes(protectedRoutes)
	handlers.NewOrderHandler(a.Orders).RegisterRoutes(protectedRoutes)

	return app
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	body := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "connected",
		"rabbitmq": "disabled",
		"cache":    "disabled",
	}

	if sqlDB, err := a.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		status = fiber.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "unreachable"
	}
	if a.mq != nil {
		body["rabbitmq"] = "connected"
	}
	if a.redis != nil {
		body["cache"] = "enabled"
	}
	return c.Status(status).JSON(body)
}

// StartConsumer logs every order event from the broker. It does nothing when RabbitMQ is disabled.
func (a *App) StartConsumer() error {
	if a.mq == nil {
		return nil
	}
	if err := a.mq.ConsumeOrderEvents(rabbitmq.LogOrderEvent(a.logger.WithField("component", "order-audit"))); err != nil {
		return fmt.Errorf("failed to start order event consumer: %w", err)
	}
	return nil
}

// Listen serves HTTP on the configured port until Shutdown.
func (a *App) Listen() error {
	a.logger.WithField("addr", a.cfg.AppPort).Info("starting server")
	return a.Fiber.Listen(a.cfg.AppPort)
}

// Shutdown stops the HTTP server and closes every connection the app opened.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(a.Fiber.ShutdownWithContext(ctx))
	if a.mq != nil {
		keep(a.mq.Close())
	}
	if a.redis != nil {
		keep(a.redis.Close())
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		keep(sqlDB.Close())
	}
	return firstErr
}
