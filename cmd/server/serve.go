package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/brightwash/catalog-server/internal/config"
	"github.com/brightwash/catalog-server/internal/database"
	"github.com/brightwash/catalog-server/internal/handler"
	"github.com/brightwash/catalog-server/internal/redis"
	"github.com/brightwash/catalog-server/internal/repository"
	"github.com/brightwash/catalog-server/internal/service"
	"github.com/brightwash/catalog-server/internal/token"
	"github.com/brightwash/catalog-server/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	setLogLevel(cfg.LogLevel)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info().Msg("migrations applied")

	db := database.NewPool(cfg.DatabaseURL)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	err = db.Ping(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Msg("database connected")

	limiter, closeLimiter, err := newLoginLimiter(cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL())

	adminRepo := repository.NewAdminUserRepository(db)
	packageRepo := repository.NewPackageRepository(db)

	authService := service.NewAuthService(adminRepo, tokens)
	packageService := service.NewPackageService(packageRepo)

	router := handler.NewRouter(handler.RouterConfig{
		AuthService:    authService,
		PackageService: packageService,
		Verifier:       authService,
		LoginLimiter:   limiter,
		Static:         web.Static(),
		DB:             db,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		IsProduction:   cfg.IsProduction(),
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.AppEnv).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
	return nil
}

// newLoginLimiter shares login throttling across instances through Redis when
// REDIS_URL is set and falls back to a per-process window otherwise.
func newLoginLimiter(cfg *config.Config) (service.AttemptLimiter, func(), error) {
	if cfg.RedisURL == "" {
		log.Info().Int("max_attempts", cfg.LoginMaxAttempts).Msg("login throttling in memory")
		return service.NewMemoryLimiter(cfg.LoginMaxAttempts, config.LoginWindow), func() {}, nil
	}

	client, err := redis.NewClient(context.Background(), cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info().Msg("redis connected")

	limiter := service.NewRedisLimiter(client.Client, "login", cfg.LoginMaxAttempts, config.LoginWindow)
	return limiter, func() { _ = client.Close() }, nil
}
