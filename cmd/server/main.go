package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/crisisconnect/moderation/internal/config"
	"github.com/crisisconnect/moderation/internal/countstore"
	"github.com/crisisconnect/moderation/internal/database"
	"github.com/crisisconnect/moderation/internal/engine"
	"github.com/crisisconnect/moderation/internal/handlers"
	"github.com/crisisconnect/moderation/internal/logging"
	"github.com/crisisconnect/moderation/internal/middleware"
	"github.com/crisisconnect/moderation/internal/policy"
	"github.com/crisisconnect/moderation/internal/routes"
	"github.com/crisisconnect/moderation/internal/services"
	"github.com/crisisconnect/moderation/internal/store"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logLevel := logging.ParseLevel(cfg.LogLevel)
	logging.Setup(logLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Policy registry (word filters + moderation rules, hot-reloaded)
	registry, err := policy.LoadFromFile(cfg.PolicyPath)
	if err != nil {
		slog.Error("failed to load policy file", "path", cfg.PolicyPath, "error", err)
		os.Exit(1)
	}
	stopWatch, err := registry.Watch(cfg.PolicyPath)
	if err != nil {
		slog.Warn("policy hot-reload disabled", "error", err)
		stopWatch = func() {}
	}
	slog.Info("policy loaded",
		"filters", len(registry.Filters()),
		"rules", len(registry.Rules()),
	)

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.StdoutHandler(logLevel),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Duplicate and velocity counters (Redis when configured)
	var counters countstore.CountStore
	if cfg.RedisURL != "" {
		rcs, err := countstore.NewRedisCountStore(cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		counters = rcs
		slog.Info("using redis count store")
	} else {
		counters = countstore.NewMemCountStore()
		slog.Info("using in-memory count store")
	}

	// Decision pipeline
	var scorer engine.ScoreProvider
	switch cfg.ScorerProvider {
	case "", "heuristic":
		scorer = engine.NewHeuristicScorer()
	default:
		slog.Warn("unknown scorer provider, using heuristic", "provider", cfg.ScorerProvider)
		scorer = engine.NewHeuristicScorer()
	}
	eng := engine.New(slog.Default(), registry, scorer, cfg.ScorerTimeout, counters)

	// Services
	st := store.NewGormStore(database.DB)
	ledger := services.NewReputationLedger(st, slog.Default())
	authService := services.NewAuthService(database.DB, cfg)
	moderationService := services.NewModerationService(st, eng, ledger, slog.Default())

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(registry)
	moderationHandler := handlers.NewModerationHandler(moderationService, ledger)
	policyHandler := handlers.NewPolicyHandler(registry)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, authHandler, healthHandler, moderationHandler, policyHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	stopWatch()
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
