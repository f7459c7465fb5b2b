package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/MorisHR/HRAPP-sub003/config"
	"github.com/MorisHR/HRAPP-sub003/db"
	"github.com/MorisHR/HRAPP-sub003/internal/audit"
	"github.com/MorisHR/HRAPP-sub003/internal/cache"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/handler"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/repository/postgres"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/service"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.Env)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.RunMigrations(cfg.DBURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Redis is optional; without it the rate limiter skips its blacklist
	// fast path and reads straight from Postgres.
	var cacheClient cache.Client
	if cfg.RedisAddr != "" {
		cacheClient, err = cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
			cacheClient = nil
		}
	}

	identityRepo := postgres.NewIdentityRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	rateLimitRepo := postgres.NewRateLimitRepository(pool)

	auditSink := audit.NewSink(logger, 1024)
	defer auditSink.Close()

	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.AccessExpiryMin)
	tokenManager := service.NewTokenManager(tokenRepo, identityRepo, tokenService, auditSink,
		cfg.RefreshExpiryMin, cfg.MaxActiveSessions)

	cipher, err := service.NewSecretCipher(cfg.MfaSecretKey)
	if err != nil {
		logger.Fatal("invalid MFA secret key", zap.Error(err))
	}
	mfaService := service.NewMFAService(identityRepo, cipher, cfg.TotpIssuer)

	limiter := service.NewRateLimiter(rateLimitRepo, cacheClient)

	authService := service.NewAuthService(identityRepo, tokenManager, mfaService, limiter, auditSink, cfg)
	authHandler := handler.NewAuthHandler(authService, tokenService, cfg)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler)

	logger.Info("starting identity service", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
