package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"boma/internal/cache"
	"boma/internal/config"
	"boma/internal/database"
	"boma/internal/events"
	"boma/internal/handlers"
	"boma/internal/jobs"
	"boma/internal/log"
	"boma/internal/metrics"
	"boma/internal/repository"
	"boma/internal/security"
	"boma/internal/server"
	"boma/internal/service"
	"boma/internal/worker/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	store, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}

	m := metrics.New()

	// Without redis, events are applied in-process and logins are not throttled.
	var (
		redisClient *redis.Client
		publisher   events.Publisher
		throttle    service.LoginThrottle
	)
	if cfg.RedisEnabled() {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		publisher = events.NewRedisPublisher(redisClient, cfg.Events.Stream)
		throttle = cache.NewLoginThrottle(redisClient, cfg.Security.LoginMaxAttempts, cfg.Security.LoginWindow)
	} else {
		logger.Warn().Msg("redis disabled; applying events inline")
		publisher = events.NewInlinePublisher(tasks.NewProcessor(store, m, logger))
	}

	hasher, err := security.NewPasswordHasher(cfg.Security.PasswordCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid password cost")
	}
	tokens := security.NewTokenService(cfg.Security.JWTSecret, cfg.Security.TokenTTL)

	services := service.New(service.Deps{
		Store:    store,
		Tokens:   tokens,
		Hasher:   hasher,
		Throttle: throttle,
		Events:   publisher,
		Metrics:  m,
		Listings: cfg.Listings,
		Log:      logger,
	})

	if b := cfg.Bootstrap; b.AdminEmail != "" {
		if err := services.Auth.EnsureAdmin(ctx, b.AdminUsername, b.AdminEmail, b.AdminPassword); err != nil {
			logger.Fatal().Err(err).Msg("bootstrap admin failed")
		}
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, services, store, redisClient, tokens)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, m)

	scheduler := jobs.NewScheduler(publisher, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, store, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, store repository.Store, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	scheduler.Stop()

	if err := store.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("store close error")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
