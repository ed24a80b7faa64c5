// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	redis_rate "github.com/go-redis/redis_rate/v10"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/admin"
	"github.com/carterperez-dev/templates/control-panel/internal/auth"
	"github.com/carterperez-dev/templates/control-panel/internal/config"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
	"github.com/carterperez-dev/templates/control-panel/internal/health"
	"github.com/carterperez-dev/templates/control-panel/internal/middleware"
	"github.com/carterperez-dev/templates/control-panel/internal/panel"
	"github.com/carterperez-dev/templates/control-panel/internal/profile"
	"github.com/carterperez-dev/templates/control-panel/internal/server"
	"github.com/carterperez-dev/templates/control-panel/internal/usage"
	"github.com/carterperez-dev/templates/control-panel/internal/user"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := core.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry, tracing disabled", "error", err)
	} else if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized", "endpoint", cfg.Otel.Endpoint)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if telemetry != nil {
		rdb.Instrument(telemetry.Tracer)
	}
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized", "algorithm", "ES256")

	userSvc := user.NewService(user.NewRepository(db.DB))
	profiles := profile.NewDebouncer(userSvc, cfg.Profile.Debounce, logger)
	userHandler := user.NewHandler(userSvc, profiles)

	authSvc := auth.NewService(
		auth.NewRepository(db.DB),
		jwtManager,
		userSvc,
		auth.NewRedisBlacklist(rdb.Client),
	)
	authHandler := auth.NewHandler(authSvc)

	panelHandler := panel.NewHandler(
		panel.NewService(panel.NewRedisStore(rdb.Client, cfg.Panel.TabTTL)),
		userSvc,
	)

	usageHandler := usage.NewHandler(
		usage.NewService(
			usage.NewRedisGuestCounter(rdb.Client, cfg.Usage.GuestWindow),
			userSvc,
			cfg.Usage.GuestTokenLimit,
		),
		userSvc,
	)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: rdb},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Users:      userSvc,
		DBStats:    db.Stats,
		DBPing:     db.Ping,
		RedisStats: rdb.PoolStats,
		RedisPing:  rdb.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(rdb.Client, middleware.RateLimitConfig{
			Limit: redis_rate.Limit{
				Rate:   cfg.RateLimit.Requests,
				Burst:  cfg.RateLimit.Burst,
				Period: cfg.RateLimit.Window,
			},
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)
	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	optionalAuth := middleware.OptionalAuth(authSvc)
	authenticator := middleware.Authenticator(authSvc)
	activeOnly := middleware.Guard(userSvc, access.Requirement{})
	adminOnly := middleware.RequireAdmin(userSvc)
	tiered := middleware.NewTieredRateLimiter(rdb.Client, middleware.DefaultTiers)

	router.Route("/v1", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Use(tiered.Handler)

		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator, activeOnly)
		userHandler.RegisterAdminRoutes(r, authenticator, activeOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
		panelHandler.RegisterRoutes(r, optionalAuth)
		usageHandler.RegisterRoutes(r, optionalAuth)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+cfg.Server.DrainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, cfg.Server.DrainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := profiles.Close(shutdownCtx); err != nil {
		logger.Error("profile flush error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := rdb.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}
