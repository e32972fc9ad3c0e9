package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/techtrend/emporium/internal"
	"github.com/techtrend/emporium/internal/auth"
	"github.com/techtrend/emporium/internal/bootstrap"
	"github.com/techtrend/emporium/internal/catalogsync"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/fakestore"
	"github.com/techtrend/emporium/internal/handler"
	"github.com/techtrend/emporium/internal/handler/api"
	"github.com/techtrend/emporium/internal/middleware"
	"github.com/techtrend/emporium/internal/postgres"
	"github.com/techtrend/emporium/internal/repository"
	"github.com/techtrend/emporium/internal/router"
	"github.com/techtrend/emporium/internal/routes"
	"github.com/techtrend/emporium/internal/telemetry"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	// Initialize Sentry
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool)

	// Initialize metrics before anything records them
	telemetry.InitBusinessMetrics("emporium")
	metrics := middleware.NewMetrics("emporium", nil)

	// Initialize services
	userService := postgres.NewUserService(store)
	categoryService := postgres.NewCategoryService(store)
	productService := postgres.NewProductService(store)
	couponService := postgres.NewCouponService(store)
	cartService := postgres.NewCartService(store)
	orderService := postgres.NewOrderService(store)
	reviewService := postgres.NewReviewService(store)
	wishlistService := postgres.NewWishlistService(store)

	if err := bootstrap.EnsureSuperAdmin(ctx, store, userService, &bootstrap.AdminConfig{
		Email:    cfg.Admin.Email,
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	}, logger); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	// FakeStore: sync reads the live API, the passthrough endpoints may be cached
	fakeStoreClient, err := fakestore.NewClient(cfg.FakeStore.BaseURL, cfg.FakeStore.Timeout, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize FakeStore client: %w", err)
	}
	syncEngine := catalogsync.NewEngine(fakeStoreClient, store, logger,
		catalogsync.WithDefaultStock(cfg.FakeStore.DefaultStock),
	)

	// Redis is optional: without it caching is off and rate limits stay in memory
	var catalog fakestore.Catalog = fakeStoreClient
	defaultLimit := router.Middleware(nil)
	credentialLimit := router.Middleware(nil)

	redisClient, err := connectRedis(ctx, cfg.Redis.URL, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()

		catalog = fakestore.NewCachedClient(fakeStoreClient, redisClient, fakestore.DefaultCacheTTL, logger)
		defaultLimit = middleware.LimitBy(
			middleware.NewRedisLimiter(redisClient, "emporium:ratelimit:api", 600, time.Minute), nil, time.Minute)
		credentialLimit = middleware.LimitBy(
			middleware.NewRedisLimiter(redisClient, "emporium:ratelimit:auth", 10, time.Minute), nil, time.Minute)
	} else {
		defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
		defer defaultRateLimiter.Stop()
		authRateLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())
		defer authRateLimiter.Stop()

		defaultLimit = defaultRateLimiter.Middleware
		credentialLimit = authRateLimiter.Middleware
	}

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	apiDeps := routes.APIDeps{
		AuthHandler: api.NewAuthHandler(userService, tokens, logger),
		UserHandler: api.NewUserHandler(userService, logger),

		CategoryHandler:  api.NewCategoryHandler(categoryService, productService, syncEngine, logger),
		ProductHandler:   api.NewProductHandler(productService, syncEngine, logger),
		FakeStoreHandler: api.NewFakeStoreHandler(catalog, logger),
		ReviewHandler:    api.NewReviewHandler(reviewService, logger),

		CartHandler:     api.NewCartHandler(cartService, logger),
		CouponHandler:   api.NewCouponHandler(couponService, logger),
		OrderHandler:    api.NewOrderHandler(orderService, logger),
		WishlistHandler: api.NewWishlistHandler(wishlistService, logger),

		CredentialLimit: credentialLimit,
	}

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env == "dev" {
		securityConfig.HSTSMaxAge = 0
	}

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithClientIP(),
		telemetry.SentryMiddleware(),
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		router.CORS(cfg.CORSOrigins),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		defaultLimit,
		router.Logger(logger),
		middleware.Authenticate(tokens),
		middleware.WithRequestLogger(logger),
		telemetry.SentryUserMiddleware(middleware.SentryUser),
	)

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := pool.Ping(req.Context()); err != nil {
			handler.ErrorResponse(w, req, domain.Unavailable(err, "health", "Database unavailable"))
			return
		}
		handler.WriteMessage(w, http.StatusOK, "OK")
	})

	routes.RegisterAPIRoutes(r, apiDeps)
	r.NotFound(handler.NotFoundResponse)

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// connectRedis returns nil when url is empty.
func connectRedis(ctx context.Context, url string, logger *slog.Logger) (*redis.Client, error) {
	if url == "" {
		logger.Info("Redis not configured, using in-memory rate limiting and no FakeStore cache")
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("Redis connection established", "addr", opts.Addr)
	return client, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
