// Package main is the entry point for the practice hub API server.
//
// The server owns the synchronous path: logging attempts, scoring them
// against the drill catalog, committing progression, and answering
// profile, stats, and leaderboard queries. Periodic work (leaderboard
// rebuilds, streak digests) lives in cmd/worker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/paddle-hub/paddle-practice-hub/config"
	"github.com/paddle-hub/paddle-practice-hub/internal/application/command"
	"github.com/paddle-hub/paddle-practice-hub/internal/application/eventhandler"
	"github.com/paddle-hub/paddle-practice-hub/internal/application/query"
	"github.com/paddle-hub/paddle-practice-hub/internal/application/saga"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/drill"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/leaderboard"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/notification"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/messaging"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/persistence/memory"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/persistence/postgres"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/persistence/redis"
	"github.com/paddle-hub/paddle-practice-hub/internal/infrastructure/service"
	httpapi "github.com/paddle-hub/paddle-practice-hub/internal/interface/http"
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

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting practice hub server",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug))

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

	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. LEADERBOARD CACHE (Redis, with in-process fallback)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		boardCache leaderboard.Cache
		redisCache *redis.Cache
	)
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

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("redis unavailable, using in-process leaderboard cache", logger.Err(err))
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
	// 5. DOMAIN SERVICES & REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	catalog := drill.Default()
	profileRepo := postgres.NewProfileRepository(dbConn, log)
	attemptRepo := postgres.NewAttemptRepository(dbConn, catalog, log)
	ledgers := command.NewLedgerRegistry(profileRepo, attemptRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. NOTIFICATION DELIVERY
	// ─────────────────────────────────────────────────────────────────────────
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

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS & HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		if closeErr := bus.Close(); closeErr != nil {
			log.Warn("event bus close", logger.Err(closeErr))
		}
	}()

	if cfg.Features.IsEnabled(config.FeatureNotifyLevelUp, nil) {
		if err := bus.Register(eventhandler.NewOnLevelUpHandler(sender, log)); err != nil {
			return fmt.Errorf("register level-up handler: %w", err)
		}
	}
	if cfg.Features.IsEnabled(config.FeatureNotifyBadgeUnlocked, nil) {
		if err := bus.Register(eventhandler.NewOnBadgeUnlockedHandler(sender, log)); err != nil {
			return fmt.Errorf("register badge handler: %w", err)
		}
	}
	if err := bus.Register(eventhandler.NewOnXPGainedHandler(boardCache, log)); err != nil {
		return fmt.Errorf("register xp handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	deps := httpapi.Dependencies{
		LogAttempt:        command.NewLogAttemptHandler(catalog, ledgers, attemptRepo, profileRepo, bus),
		DeleteAttempt:     command.NewDeleteAttemptHandler(ledgers, attemptRepo, bus),
		UpdateProfile:     command.NewUpdateProfileHandler(ledgers, profileRepo, bus),
		Provisioning:      saga.NewProvisioningSaga(profileRepo, ledgers, sender, bus),
		GetProfile:        query.NewGetProfileHandler(profileRepo, attemptRepo),
		GetHistory:        query.NewGetHistoryHandler(attemptRepo),
		GetDrills:         query.NewGetDrillsHandler(catalog, profileRepo),
		GetCategoryStats:  query.NewGetCategoryStatsHandler(attemptRepo, catalog),
		GetWeeklyActivity: query.NewGetWeeklyActivityHandler(attemptRepo),
		GetLeaderboard:    query.NewGetLeaderboardHandler(boardCache, profileRepo),
		Logger:            log,
		Health:            &healthChecker{db: dbConn, redis: redisCache},
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpapi.Config{
		Host:               cfg.HTTP.Host,
		Port:               cfg.HTTP.Port,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:     cfg.HTTP.MaxHeaderBytes,
		EnableCORS:         cfg.HTTP.EnableCORS,
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
	}
	server := httpapi.NewServer(serverCfg, deps)

	errCh := server.StartAsync()
	log.Info("practice hub server is running", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	log.Info("shutdown completed")
	return nil
}

// healthChecker probes the server's hard dependencies.
type healthChecker struct {
	db    *postgres.Connection
	redis *redis.Cache
}

func (h *healthChecker) Check(ctx context.Context) httpapi.HealthStatus {
	status := httpapi.HealthStatus{Healthy: true, Checks: make(map[string]string)}

	if err := h.db.Ping(ctx); err != nil {
		status.Healthy = false
		status.Checks["postgres"] = err.Error()
	} else {
		status.Checks["postgres"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			// Leaderboard degrades to live queries; not fatal.
			status.Checks["redis"] = err.Error()
		} else {
			status.Checks["redis"] = "ok"
		}
	}

	return status
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
