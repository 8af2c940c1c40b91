package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/optitask/internal/config"
	"github.com/iliyamo/optitask/internal/database"
	"github.com/iliyamo/optitask/internal/handler"
	"github.com/iliyamo/optitask/internal/middleware"
	"github.com/iliyamo/optitask/internal/router"
	"github.com/iliyamo/optitask/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	db, err := database.Open(cfg.DatabaseOptions())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	opts := router.Options{
		BodyLimit:      cfg.BodyLimit,
		RequestTimeout: cfg.RequestTimeout,
		LogLevel:       logLevel(cfg.LogLevel),
		AccessLog:      cfg.Env != "test",
		Identity: middleware.IdentityConfig{
			JWTSecret:       cfg.JWTSecret,
			TrustUserHeader: cfg.TrustUserHeader,
		},
	}
	e := router.New(opts)

	rl := config.LoadRateLimitConfig(settings)
	if rl.Enabled {
		// A nil client makes the limiter fail open.
		rdb := config.NewRedisClient(config.LoadRedisConfig(settings))
		if rdb == nil {
			e.Logger.Warn("redis unreachable, rate limiting disabled")
		} else {
			defer rdb.Close()
		}
		opts.RateLimit = middleware.NewTokenBucket(rl, rdb)
	}

	var events handler.EventPublisher
	if cfg.EventsEnabled {
		logger, _ := e.Logger.(*log.Logger)
		events = service.NewEventPublisher(cfg.RabbitMQURL, logger)
	}

	router.RegisterRoutes(e, router.NewHandlers(db, events, time.Now), opts)

	addr := ":" + cfg.Port
	e.Logger.Infof("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBDriver)

	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	e.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return shutdown(shutdownCtx, e)
}

func shutdown(ctx context.Context, e *echo.Echo) error {
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// logLevel maps LOG_LEVEL onto the Echo logger levels.
func logLevel(s string) log.Lvl {
	switch s {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
