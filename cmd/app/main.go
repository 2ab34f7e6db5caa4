package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/userdir/directory-system/internal/api"
	"github.com/userdir/directory-system/internal/core/service"
	"github.com/userdir/directory-system/internal/core/session"
	"github.com/userdir/directory-system/internal/infrastructure/config"
	mongodb "github.com/userdir/directory-system/internal/infrastructure/db/mongo"
	redisdb "github.com/userdir/directory-system/internal/infrastructure/db/redis"
	"github.com/userdir/directory-system/internal/infrastructure/queue"
	"github.com/userdir/directory-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	userRepo := mongodb.NewUserRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	// The unique email index must exist before registrations are accepted.
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("audit index creation failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	// --- Core services ---
	sessions := session.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	throttle := redisdb.NewLoginThrottle(rdb, 0, 0)

	audit := queue.NewAuditDispatcher(0, auditRepo, log)
	audit.Start(ctx)

	authService := service.NewAuthService(userRepo, sessions, cfg.Auth.BcryptCost, log).
		WithThrottle(throttle).
		WithAudit(audit)
	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost, log).
		WithAudit(audit)

	// --- HTTP ---
	e := api.NewRouter(api.RouterConfig{
		Sessions:    sessions,
		AuthService: authService,
		UserService: userService,
		Mongo:       db,
		Redis:       rdb,
		Logger:      log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
