// Package main is the entry point of the LearnHub progression server.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure progression rules without external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: PostgreSQL repositories, Redis cache, event bus
// - Interface: REST API handlers
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/learnhub/learnhub-backend/config"
	"github.com/learnhub/learnhub-backend/internal/application"
	"github.com/learnhub/learnhub-backend/internal/application/eventhandler"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/infrastructure/messaging"
	"github.com/learnhub/learnhub-backend/internal/infrastructure/persistence/postgres"
	"github.com/learnhub/learnhub-backend/internal/infrastructure/persistence/redis"
	httpserver "github.com/learnhub/learnhub-backend/internal/interface/http"
	"github.com/learnhub/learnhub-backend/internal/interface/http/handlers"
	"github.com/learnhub/learnhub-backend/pkg/logger"
	"github.com/learnhub/learnhub-backend/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Logging
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting LearnHub progression server",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()

	// Retry the first ping: in containerized deployments the database often
	// comes up a few seconds after the service.
	if err := retry.DatabaseRetrier().Do(ctx, dbConn.Ping); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Migrations
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations completed")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Redis (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var leaderboardCache *redis.LeaderboardCache
	var redisCache *redis.Cache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			// Leaderboard reads fall back to PostgreSQL without a cache.
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			leaderboardCache = redis.NewLeaderboardCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Event bus
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus")
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		log.Info("closing event bus")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. Repositories and application service
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer")

	activityRepo := postgres.NewActivityRepository(dbConn)
	activityLogger := eventhandler.NewActivityLogger(activityRepo, log)
	if err := activityLogger.Register(eventBus); err != nil {
		return fmt.Errorf("failed to register activity logger: %w", err)
	}

	rewards := learner.RewardTable{
		learner.DifficultyBeginner:     learner.Points(cfg.Progression.RewardBeginner),
		learner.DifficultyIntermediate: learner.Points(cfg.Progression.RewardIntermediate),
		learner.DifficultyAdvanced:     learner.Points(cfg.Progression.RewardAdvanced),
	}

	svcConfig := application.Config{
		UnitOfWork:   postgres.NewUnitOfWork(dbConn),
		Catalog:      postgres.NewCatalogRepository(dbConn),
		Store:        postgres.NewProgressRepository(dbConn),
		Learners:     postgres.NewLearnerRepository(dbConn),
		Achievements: postgres.NewAchievementRepository(dbConn),
		Activity:     activityRepo,
		Population:   postgres.NewLeaderboardRepository(dbConn),
		CacheTTL:     cfg.Progression.LeaderboardCacheTTL,
		Rewards:      rewards,
		Publisher:    eventBus,
		Logger:       log,
	}
	if leaderboardCache != nil {
		svcConfig.Cache = leaderboardCache
	}

	service, err := application.NewProgressionService(svcConfig)
	if err != nil {
		return fmt.Errorf("failed to build progression service: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}

	serverConfig := httpserver.DefaultConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = cfg.Server.WriteTimeout
	serverConfig.IdleTimeout = cfg.Server.IdleTimeout

	server := httpserver.NewServer(serverConfig, httpserver.Dependencies{
		Service:       service,
		Logger:        log,
		HealthChecker: healthChecker,
	})

	serverErr := server.StartAsync()
	log.Info("HTTP server listening", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 9. Wait for shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received signal", logger.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownTimeout := cfg.App.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	log.Info("starting graceful shutdown", logger.Duration("timeout", shutdownTimeout))
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", logger.Err(err))
	}

	log.Info("shutdown complete")
	return nil
}

// setupLogger builds the process logger from the observability settings.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	return logger.New(opts)
}
