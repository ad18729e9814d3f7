package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/checkout"
	"github.com/wichananm65/storefront/internal/config"
	"github.com/wichananm65/storefront/internal/database"
	"github.com/wichananm65/storefront/internal/delivery"
	"github.com/wichananm65/storefront/internal/logging"
	"github.com/wichananm65/storefront/internal/metrics"
	"github.com/wichananm65/storefront/internal/notification"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/product"
	"github.com/wichananm65/storefront/internal/user"
)

type repositories struct {
	users   user.Repository
	catalog product.Catalog
	carts   cart.Repository
	orders  order.Repository
	store   checkout.Store
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Development())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	var repos repositories
	if cfg.DatabaseURL != "" {
		db, err = database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("open database", zap.Error(err))
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatal("migrate database", zap.Error(err))
		}
		repos = postgresRepositories(db)
	} else {
		logger.Warn("DATABASE_URL is not set, using in-memory storage")
		repos, err = inMemoryRepositories()
		if err != nil {
			logger.Fatal("seed in-memory storage", zap.Error(err))
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	var sender notification.Sender = notification.NewLogSender(logger)
	var kafkaSender *notification.KafkaSender
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSender = notification.NewKafkaSender(cfg.KafkaBrokers, cfg.KafkaTopic)
		sender = kafkaSender
		logger.Info("publishing order events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	dispatcher := notification.NewDispatcher(sender, cfg.NotificationQueueSize, cfg.NotificationTimeout, logger, m)

	deliveryRegistry := delivery.DefaultRegistry()
	cartService := cart.NewService(repos.carts, repos.catalog, logger)
	orderService := order.NewService(repos.orders, dispatcher, logger, m)
	checkoutService := checkout.NewService(checkout.Deps{
		Carts:          repos.carts,
		Orders:         repos.orders,
		Store:          repos.store,
		Catalog:        repos.catalog,
		Registry:       deliveryRegistry,
		Notifier:       dispatcher,
		Logger:         logger,
		Metrics:        m,
		NotifyOnCreate: cfg.NotifyOnCreate,
	})

	app := fiber.New(fiber.Config{DisableStartupMessage: !cfg.Development()})
	app.Use(recover.New())
	setupCORS(app, cfg.CORSOrigins)
	app.Use(m.Middleware())
	app.Use(requestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		if db != nil {
			if err := db.PingContext(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler(registry))

	user.NewHandler(user.NewService(repos.users), cfg.JWTSecret).RegisterPublicRoutes(app)
	delivery.NewHandler(deliveryRegistry).RegisterPublicRoutes(app)
	product.NewHandler(repos.catalog).RegisterPublicRoutes(app)

	app.Use(auth.Middleware(cfg.JWTSecret))

	cart.NewHandler(cartService).RegisterProtectedRoutes(app)
	checkout.NewHandler(checkoutService).RegisterProtectedRoutes(app)
	order.NewHandler(orderService).RegisterProtectedRoutes(app)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", zap.Error(err))
	}

	dispatcher.Close()
	if kafkaSender != nil {
		if err := kafkaSender.Close(); err != nil {
			logger.Warn("close kafka writer", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}

func postgresRepositories(db *sql.DB) repositories {
	carts := cart.NewPostgresRepository(db)
	orders := order.NewPostgresRepository(db)
	return repositories{
		users:   user.NewPostgresRepository(db),
		catalog: product.NewPostgresCatalog(db),
		carts:   carts,
		orders:  orders,
		store:   checkout.NewPostgresStore(db, carts, orders),
	}
}

// inMemoryRepositories seeds a sample catalog and two demo accounts so the
// service can be tried without a database.
func inMemoryRepositories() (repositories, error) {
	customerPw, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return repositories{}, err
	}
	adminPw, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return repositories{}, err
	}

	carts := cart.NewInMemoryRepository(nil)
	orders := order.NewInMemoryRepository(nil)
	return repositories{
		users: user.NewInMemoryRepository([]user.User{
			{ID: 1, Email: "demo@example.com", Password: string(customerPw), FirstName: "Demo", Role: auth.RoleCustomer},
			{ID: 2, Email: "admin@example.com", Password: string(adminPw), FirstName: "Admin", Role: auth.RoleAdmin},
		}),
		catalog: product.NewInMemoryCatalog(product.SampleCatalog()),
		carts:   carts,
		orders:  orders,
		store:   checkout.NewMemoryStore(carts, orders),
	}, nil
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + checkout.IdempotencyHeader,
	}))
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("elapsed", time.Since(start)),
		)
		return err
	}
}
