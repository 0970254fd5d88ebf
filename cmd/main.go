// Command playzone-auth starts the PlayZone authentication service.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/marcomartinez12/playzone/config"
	"github.com/marcomartinez12/playzone/db"
	"github.com/marcomartinez12/playzone/internal/auth/handler"
	repo "github.com/marcomartinez12/playzone/internal/auth/repository/postgres"
	"github.com/marcomartinez12/playzone/internal/auth/service"
	"github.com/marcomartinez12/playzone/internal/mailer"
	"github.com/marcomartinez12/playzone/internal/migrate"
)

const maintenanceInterval = time.Hour

func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	if cfg.Env == "development" {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DBURL); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Fatal("database connection", zap.Error(err))
	}
	defer pool.Close()

	repository := repo.NewRepository(pool)

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail, err = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
			cfg.EmailFrom, cfg.FrontendURL, cfg.ResetExpiryMin)
		if err != nil {
			logger.Fatal("mailer setup", zap.Error(err))
		}
	} else {
		mail = mailer.Noop{Logger: logger}
	}

	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.AccessExpiryMin)
	refreshService := service.NewRefreshTokenService(repository, repository, cfg.RefreshExpiryDays, logger)
	rateLimiter := service.NewRateLimiter(repository, repository,
		cfg.MaxUserAttempts, cfg.MaxIPAttempts, cfg.LockoutMin, cfg.AttemptWindowMin, logger)
	auditService := service.NewAuditService(repository, logger)
	userService := service.NewUserService(repository, tokenService, refreshService,
		rateLimiter, auditService, mail, cfg.ResetExpiryMin, logger)

	authHandler := handler.NewAuthHandler(userService)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler)

	// Token and attempt garbage collection; housekeeping only, nothing
	// depends on its timeliness.
	go func() {
		ticker := time.NewTicker(maintenanceInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := refreshService.Sweep(ctx); err != nil {
					logger.Warn("refresh token sweep", zap.Error(err))
				} else if n > 0 {
					logger.Info("refresh token sweep", zap.Int64("deleted", n))
				}
				if n, err := rateLimiter.SweepAttempts(ctx); err != nil {
					logger.Warn("login attempt sweep", zap.Error(err))
				} else if n > 0 {
					logger.Info("login attempt sweep", zap.Int64("deleted", n))
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
