// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

// Command api is the entry point for the Lexora HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and the notification worker.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexora-app/lexora/internal/api"
	"github.com/lexora-app/lexora/internal/notify"
	"github.com/lexora-app/lexora/internal/platform/config"
	"github.com/lexora-app/lexora/internal/platform/constants"
	"github.com/lexora-app/lexora/internal/platform/migration"
	pgstore "github.com/lexora-app/lexora/internal/platform/postgres"
	redisstore "github.com/lexora-app/lexora/internal/platform/redis"
	"github.com/lexora-app/lexora/internal/platform/sec"
	"github.com/lexora-app/lexora/internal/scenarios"
	"github.com/lexora-app/lexora/internal/users/auth"
	"github.com/lexora-app/lexora/internal/users/user"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "lexora"))
	slog.SetDefault(log)

	log.Info("[Lexora] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "lexora"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security Primitives ────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	passwordHasher, err := sec.NewPasswordHasher(cfg.BcryptCost)
	must(log, err, "initialize password hasher")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Notifications ──────────────────────────────────────────────────
	// Redis-backed queue with a single in-process worker. Delivery goes
	// through Postmark in deployed environments; development logs instead.
	notifyQueue := notify.NewRedisQueue(rdb)
	dispatcher := notify.NewDispatcher(notifyQueue)

	var emailSender notify.EmailSender
	if cfg.PostmarkServerToken != "" {
		emailSender, err = notify.NewPostmarkSender(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.SenderEmail)
		must(log, err, "initialize postmark sender")
	} else {
		log.Warn("postmark_not_configured_using_log_sender")
		emailSender = notify.NewLogSender(log)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	worker := notify.NewWorker(notifyQueue, emailSender, log)
	go func() {
		if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("notification worker stopped", slog.Any("error", err))
		}
	}()

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	userRepository := user.NewRepository(pool)
	userService := user.NewService(userRepository, passwordHasher, dispatcher)
	userHandler := user.NewHandler(userService)

	authService := auth.NewService(userRepository, tokenService, passwordHasher, dispatcher, cfg.AppURL, auth.TTLConfig{
		Access:  cfg.AccessTokenTTL,
		Partial: cfg.PartialTokenTTL,
		Reset:   cfg.ResetTokenTTL,
	})
	authHandler := auth.NewHandler(authService)

	scenarioRepository := scenarios.NewRepository(pool)
	scenarioService := scenarios.NewService(scenarioRepository)
	scenarioHandler := scenarios.NewHandler(scenarioService)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		User:      userHandler,
		Scenario:  scenarioHandler,
	}

	server := api.NewServer(workerCtx, cfg, log, tokenService, userService, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	// Stop the worker after the listener drains so queued jobs are not lost
	// mid-delivery.
	workerCancel()

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
