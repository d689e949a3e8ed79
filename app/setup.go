package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sahilchouksey/learnhub-api/api"
	"github.com/sahilchouksey/learnhub-api/config"
	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/router"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/services/cron"
	"github.com/sahilchouksey/learnhub-api/services/storage"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/cache"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
)

const (
	courseCacheTTL  = 5 * time.Minute
	shutdownTimeout = 15 * time.Second
)

// Environment loads configuration and the logger shared by every command.
func Environment() (*config.EnvironmentVariable, *logger.Logger, error) {
	if err := config.LoadENV(); err != nil {
		return nil, nil, err
	}

	env, err := config.Get()
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(env.LOG_MODE)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return env, log, nil
}

// Migrate creates or updates tables and the CHECK constraints on top of them.
func Migrate(env *config.EnvironmentVariable, log *logger.Logger) error {
	store, err := database.StartGORM(env, log)
	if err != nil {
		log.Error("check whether Postgres is running", "host", env.DB_HOST, "port", env.DB_PORT)
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		return err
	}

	pq, err := database.Start(env, log)
	if err != nil {
		return err
	}
	defer pq.Close()

	return pq.Init()
}

// Seed fills an empty database with the admin account and default content.
func Seed(env *config.EnvironmentVariable, log *logger.Logger, sample bool) error {
	store, err := database.StartGORM(env, log)
	if err != nil {
		return err
	}
	defer store.Close()

	return database.RunSeeds(store.DB(), database.SeedOptions{
		AdminEmail:    env.ADMIN_EMAIL,
		AdminPassword: env.ADMIN_PASSWORD,
		SampleCatalog: sample,
	}, log)
}

// SetupAndRunServer migrates, wires every service and serves HTTP until SIGINT or SIGTERM.
func SetupAndRunServer(env *config.EnvironmentVariable, log *logger.Logger) error {
	if env.JWT_SECRET == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if err := Migrate(env, log); err != nil {
		log.Error("failed to initialize database tables", "error", err)
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM(env, log)
	if err != nil {
		return err
	}
	defer store.Close()

	// lib/pq connection for aggregate reports
	reports, err := database.Start(env, log)
	if err != nil {
		return err
	}
	defer reports.Close()

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        env.JWT_ACCESS_TTL,
		RefreshExpiry: env.JWT_REFRESH_TTL,
		Issuer:        env.JWT_ISSUER,
	})

	cfg := services.RegistryConfig{
		DB:                store.DB(),
		JWT:               jwtManager,
		Reports:           reports,
		Mailer:            services.NewEmailService(env, log.With("component", "email")),
		CouponMode:        env.COUPON_MODE,
		WebhookSecret:     env.PAYMENT_WEBHOOK_SECRET,
		MediaURLTTL:       env.MEDIA_URL_TTL,
		PendingPaymentTTL: env.PENDING_PAYMENT_TTL,
		Log:               log,
	}

	// Redis backs brute force protection and the course cache; both are optional
	var bruteForce *middleware.BruteForceProtection
	redisCache, err := cache.NewRedisCache(env.REDIS_URL)
	if err != nil {
		log.Warn("redis unavailable, brute force protection and course cache disabled", "error", err)
	} else {
		defer redisCache.Close()
		bruteForce = middleware.NewBruteForceProtection(redisCache)
		cfg.Cache = services.NewRedisCourseCache(redisCache, courseCacheTTL, log)
	}

	spaces, err := storage.NewSpacesClient(storage.SpacesConfig{
		AccessKey: env.SPACES_ACCESS_KEY,
		SecretKey: env.SPACES_SECRET_KEY,
		Bucket:    env.SPACES_BUCKET,
		Region:    env.SPACES_REGION,
		Endpoint:  env.SPACES_ENDPOINT,
	})
	if err != nil {
		log.Warn("object storage not configured, lesson media disabled", "error", err)
	} else {
		cfg.Media = spaces
	}

	registry := services.NewRegistry(cfg)

	// Initialize Cron Manager (only if enabled via environment variable)
	if env.CRON_ENABLED {
		cronManager := cron.NewCronManager(store.DB(), cron.Deps{
			Blacklist:         registry.Blacklist,
			Auth:              registry.Auth,
			Payments:          registry.Payments,
			Coupons:           registry.Coupons,
			Notifications:     registry.Notifications,
			PendingPaymentTTL: registry.PendingPaymentTTL,
		}, log)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn("failed to start cron jobs", "error", err)
		} else {
			defer cronManager.Stop()
		}
	}

	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT), log)
	router.SetupRoutes(server.GetEngine(), router.Config{
		Store:          store,
		DB:             store.DB(),
		JWT:            jwtManager,
		BruteForce:     bruteForce,
		AllowedOrigins: env.ALLOWED_ORIGINS,
		Log:            log,
	}, registry)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}
