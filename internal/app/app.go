package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/damkaswim/storefront/internal/auth"
	"github.com/damkaswim/storefront/internal/catalog"
	"github.com/damkaswim/storefront/internal/config"
	"github.com/damkaswim/storefront/internal/event"
	handler "github.com/damkaswim/storefront/internal/handler/http"
	"github.com/damkaswim/storefront/internal/mailer"
	"github.com/damkaswim/storefront/internal/repository/postgres"
	redisrepo "github.com/damkaswim/storefront/internal/repository/redis"
	"github.com/damkaswim/storefront/internal/service"
	"github.com/damkaswim/storefront/migrations"
	"github.com/damkaswim/storefront/pkg/database"
	"github.com/damkaswim/storefront/pkg/health"
	"github.com/damkaswim/storefront/pkg/httpclient"
	pkgkafka "github.com/damkaswim/storefront/pkg/kafka"
	"github.com/damkaswim/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	registry       *catalog.Registry
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis for session carts and wishlists.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("host", cfg.RedisHost))

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Parse JWT expiry durations.
	accessExpiry, err := time.ParseDuration(cfg.JWTAccessExpiry)
	if err != nil {
		return nil, fmt.Errorf("parse JWT access expiry %q: %w", cfg.JWTAccessExpiry, err)
	}
	refreshExpiry, err := time.ParseDuration(cfg.JWTRefreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("parse JWT refresh expiry %q: %w", cfg.JWTRefreshExpiry, err)
	}

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, accessExpiry, refreshExpiry)

	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	subscriberRepo := postgres.NewSubscriberRepository(pool)
	dashboardRepo := postgres.NewDashboardRepository(pool)

	cartTTL := time.Duration(cfg.CartTTLDays) * 24 * time.Hour
	cartStore := redisrepo.NewCartStore(redisClient, cartTTL, logger)
	wishlistStore := redisrepo.NewWishlistStore(redisClient, cartTTL, logger)

	eventProducer := event.NewProducer(producer, logger)

	mailClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("mailer"),
		logger,
	)
	mailSender := mailer.NewHTTPSender(mailClient, mailer.Config{
		BaseURL: cfg.MailBaseURL,
		APIKey:  cfg.MailAPIKey,
		From:    cfg.MailFrom,
	}, logger)

	productService := service.NewProductService(productRepo, eventProducer, logger)
	cartService := service.NewCartService(cartStore, wishlistStore, productRepo, eventProducer, logger)
	orderService := service.NewOrderService(orderRepo, cartStore, eventProducer, logger)
	messageService := service.NewMessageService(messageRepo, subscriberRepo, mailSender, eventProducer, logger)
	customerService := service.NewCustomerService(customerRepo, logger)
	authService := service.NewAuthService(adminRepo, customerRepo, jwtManager, logger)
	dashboardService := service.NewDashboardService(dashboardRepo, logger)

	registry := catalog.NewRegistry(
		productRepo,
		cfg.CatalogPageSize,
		time.Duration(cfg.CatalogSessionTTLMins)*time.Minute,
		logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Catalog:   handler.NewCatalogHandler(registry, logger),
		Product:   handler.NewProductHandler(productService, logger),
		Cart:      handler.NewCartHandler(cartService, logger),
		Order:     handler.NewOrderHandler(orderService, logger),
		Message:   handler.NewMessageHandler(messageService, logger),
		Customer:  handler.NewCustomerHandler(customerService, logger),
		Auth:      handler.NewAuthHandler(authService, logger),
		Dashboard: handler.NewDashboardHandler(dashboardService, logger),
		AuthSvc:   authService,
		Health:    healthHandler,
		Logger:    logger,
		CORS: handler.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		RateRPS:   cfg.ContactRateRPS,
		RateBurst: cfg.ContactRateBurst,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		registry:       registry,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the catalog session sweeper, blocking until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go a.registry.Run(sweepCtx)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server first so
// in-flight requests drain, then the tracer so their spans flush, then the
// Kafka producer and the data stores.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
