// Package main is the entry point for the trial-catalog-service API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trial-catalog-service/internal/app/service"
	"trial-catalog-service/internal/config"
	"trial-catalog-service/internal/domain"
	"trial-catalog-service/internal/infra/auth"
	"trial-catalog-service/internal/infra/notifier"
	"trial-catalog-service/internal/infra/postgres"
	"trial-catalog-service/internal/infra/postgres/migrations"
	rediscache "trial-catalog-service/internal/infra/redis"
	"trial-catalog-service/internal/infra/registry"
	"trial-catalog-service/internal/infra/registry/ctgov"
	"trial-catalog-service/internal/job"
	"trial-catalog-service/internal/logger"
	"trial-catalog-service/internal/transport/httpserver"
	"trial-catalog-service/internal/validator"
	"trial-catalog-service/pkg/locker"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting trial-catalog-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
	db, err := postgres.NewConnection(
		postgres.Config{
			Host:         cfg.Database.Host,
			Port:         cfg.Database.Port,
			Name:         cfg.Database.Name,
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			SSLMode:      cfg.Database.SSLMode,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			MaxLifetime:  cfg.Database.MaxLifetime,
		},
		log.Logger,
	)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	// Run migrations
	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	// Create storage implementations
	repo := postgres.NewRepository(db)
	savedStore := postgres.NewSavedStore(db)
	alertStore := postgres.NewAlertStore(db)

	// Create registry clients
	ctgovClient := ctgov.New(
		registry.ClientConfig{
			BaseURL: cfg.Registry.CTGov.BaseURL,
			Timeout: cfg.Registry.CTGov.Timeout,
			Retry: registry.RetryConfig{
				MaxAttempts: cfg.Registry.CTGov.Retry.MaxAttempts,
				WaitTime:    cfg.Registry.CTGov.Retry.WaitTime,
				MaxWaitTime: cfg.Registry.CTGov.Retry.MaxWaitTime,
			},
			CB: registry.CBConfig{
				MaxRequests:  cfg.Registry.CTGov.CB.MaxRequests,
				Interval:     cfg.Registry.CTGov.CB.Interval,
				Timeout:      cfg.Registry.CTGov.CB.Timeout,
				FailureRatio: cfg.Registry.CTGov.CB.FailureRatio,
			},
		},
		log.Logger,
	)

	registries := []domain.RegistryProvider{ctgovClient}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Ping Redis to verify connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("connected to Redis",
		zap.String("host", cfg.Redis.Host),
		zap.Int("port", cfg.Redis.Port),
	)

	// Create cache implementation (optional, based on config)
	var cache domain.Cache
	if cfg.Cache.Enabled {
		cache = rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		log.Info("cache enabled",
			zap.Duration("search_ttl", cfg.Cache.SearchTTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("cache disabled")
	}

	// Create notifier (optional, based on config)
	var mailer domain.Notifier
	if cfg.Mail.Enabled {
		mailer = notifier.NewMailjetNotifier(
			cfg.Mail.PublicKey,
			cfg.Mail.PrivateKey,
			cfg.Mail.Sender,
			log.Logger,
		)
		log.Info("mail notifications enabled", zap.String("sender", cfg.Mail.Sender))
	} else {
		log.Info("mail notifications disabled")
	}

	// Create token verifier
	verifier, err := auth.NewJWTVerifier(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatal("failed to create token verifier", zap.Error(err))
	}

	// Create services
	trialSvc := service.NewTrialService(repo, cache, cfg.Cache.SearchTTL, mailer, log.Logger)
	savedSvc := service.NewSavedTrialService(savedStore, cache, log.Logger)
	alertSvc := service.NewAlertService(alertStore, log.Logger)
	syncSvc := service.NewSyncService(repo, registries, log.Logger)

	// Create distributed locker
	distLocker := locker.NewRedisLocker(redisClient, log.Logger)

	// Create validator
	v := validator.New()

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: 1024 * 1024, // 1MB
			Debug:     cfg.App.Debug,
		},
		httpserver.Services{
			Trials: trialSvc,
			Saved:  savedSvc,
			Alerts: alertSvc,
			Sync:   syncSvc,
		},
		verifier,
		db,
		v,
		log.Logger,
	)

	// Start sync scheduler with distributed locking
	scheduler := job.NewSyncScheduler(
		syncSvc,
		job.SyncConfig{
			Interval:  cfg.Sync.Interval,
			Timeout:   cfg.Sync.Timeout,
			OnStartup: cfg.Sync.OnStartup,
		},
		log.Logger,
		distLocker,
	)
	scheduler.Start(cfg.Sync.OnStartup)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		// Stop scheduler
		scheduler.Stop()

		// Shutdown server with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
