// Package main is the entry point for the practice hub background worker.
//
// The worker owns the periodic path:
//   - rebuilding the ranked leaderboard from committed profile XP
//   - sending the evening streak digest to accounts about to lose a streak
//
// It shares the domain and persistence layers with cmd/server but runs
// no HTTP listener; deployments scale the two independently.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/paddle-hub/paddle-practice-hub/config"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/drill"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/leaderboard"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/notification"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/messaging"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/persistence/memory"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/persistence/postgres"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/persistence/redis"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/scheduler"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/scheduler/jobs"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/service"
	"github.com/paddle-hub/paddle-practice-hub/pkg/logger"
	"github.com/paddle-hub/paddle-practice-hub/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled; nothing to run")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting practice hub worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("timezone", cfg.App.Timezone))

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	pgCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	var dbConn *postgres.Connection
	err = retry.DatabaseRetrier().Do(ctx, func(ctx context.Context) error {
		conn, connErr := postgres.NewConnection(ctx, pgCfg)
		if connErr != nil {
			return retry.Retryable(connErr)
		}
		dbConn = conn
		return nil
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer dbConn.Close()
	log.Info("database connection established")

	// The worker also migrates so either binary can start first.
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. LEADERBOARD CACHE (Redis, with in-process fallback)
	// ─────────────────────────────────────────────────────────────────────────
	var boardCache leaderboard.Cache
	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureLeaderboardCache, nil) {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, cacheErr := redis.NewCache(redisCfg)
		if cacheErr != nil {
			log.Warn("redis unavailable, rebuilds will stay in-process", logger.Err(cacheErr))
		} else {
			defer redisCache.Close()
			boardCache = redis.NewLeaderboardCache(redisCache, cfg.Redis.LeaderboardTTL)
			log.Info("redis connection established")
		}
	}
	if boardCache == nil {
		boardCache = memory.NewLeaderboardCache(cfg.Redis.LeaderboardTTL)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REPOSITORIES & DELIVERY
	// ─────────────────────────────────────────────────────────────────────────
	catalog := drill.Default()
	profileRepo := postgres.NewProfileRepository(dbConn, log)
	attemptRepo := postgres.NewAttemptRepository(dbConn, catalog, log)

	var channels []notification.Channel
	if cfg.Notifications.WebhookURL != "" && cfg.Features.NotificationsEnabled(nil) {
		channels = append(channels, service.NewWebhookChannel(service.WebhookConfig{
			URL:     cfg.Notifications.WebhookURL,
			Timeout: cfg.Notifications.WebhookTimeout,
		}, log))
	}
	channels = append(channels, service.NewLogChannel(log))

	sender, err := service.NewNotificationSender(log, channels...)
	if err != nil {
		return fmt.Errorf("build notification sender: %w", err)
	}

	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		if closeErr := bus.Close(); closeErr != nil {
			log.Warn("event bus close", logger.Err(closeErr))
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. SCHEDULER & JOBS
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:   log,
		Timezone: cfg.App.Location,
		Tick:     cfg.Scheduler.Tick,
	})

	rebuildJob := jobs.NewRebuildLeaderboardJob(profileRepo, boardCache, bus, log,
		jobs.RebuildLeaderboardConfig{
			MaxEntries: cfg.Scheduler.MaxAccountsPerJob,
			Timeout:    cfg.Scheduler.JobTimeout,
		})
	if err := sched.Register(rebuildJob, scheduler.Every(cfg.Scheduler.RebuildLeaderboardInterval)); err != nil {
		return fmt.Errorf("register %s: %w", rebuildJob.Name(), err)
	}

	digestAt := scheduler.DailyAt(cfg.Scheduler.StreakDigestHour, cfg.Scheduler.StreakDigestMinute)
	if cfg.Features.IsEnabled(config.FeatureNotifyStreakReminder, nil) {
		digestJob := jobs.NewStreakDigestJob(profileRepo, attemptRepo, sender, log,
			jobs.StreakDigestConfig{
				MaxAccounts: cfg.Scheduler.MaxAccountsPerJob,
				MinStreak:   cfg.Scheduler.StreakDigestMinStreak,
				Timeout:     cfg.Scheduler.JobTimeout,
			})
		if err := sched.Register(digestJob, digestAt); err != nil {
			return fmt.Errorf("register %s: %w", digestJob.Name(), err)
		}
	} else {
		log.Info("streak digest disabled by feature flag")
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	// Prime the leaderboard so the API never starts against a cold cache.
	if result, runErr := sched.RunNow(ctx, rebuildJob.Name()); runErr != nil {
		log.Warn("initial leaderboard rebuild failed", logger.Err(runErr))
	} else if !result.Success {
		log.Warn("initial leaderboard rebuild failed", logger.Err(result.Error))
	}

	log.Info("practice hub worker is running",
		logger.String("rebuild_interval", cfg.Scheduler.RebuildLeaderboardInterval.String()),
		logger.String("digest_at", digestAt.String()))

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case <-ctx.Done():
	}

	if err := sched.Stop(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	log.Info("shutdown completed")
	return nil
}

func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	switch cfg.Observability.LogLevel {
	case "debug":
		opts.Level = logger.LevelDebug
	case "warn":
		opts.Level = logger.LevelWarn
	case "error":
		opts.Level = logger.LevelError
	default:
		opts.Level = logger.LevelInfo
	}
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}
