package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crisisconnect/moderation/internal/config"
	"github.com/crisisconnect/moderation/internal/handlers"
	"github.com/crisisconnect/moderation/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	moderationHandler *handlers.ModerationHandler,
	policyHandler *handlers.PolicyHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health and Prometheus metrics (public)
	api.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Content intake and status (called by the platform services)
	api.Post("/content", moderationHandler.SubmitContent)
	api.Get("/content/:id", moderationHandler.GetContent)
	api.Post("/content/:id/appeal", moderationHandler.SubmitAppeal)
	api.Get("/reputation/:user_id", moderationHandler.GetReputation)

	// Moderator workbench (JWT required)
	mod := api.Group("/mod", middleware.JWTProtected(cfg))
	mod.Get("/queue", moderationHandler.ListQueue)
	mod.Post("/queue/claim", moderationHandler.ClaimNext)
	mod.Post("/content/:id/review", moderationHandler.Review)
	mod.Put("/appeals/:id", moderationHandler.ResolveAppeal)

	// Policy management (lead or admin)
	policyGroup := api.Group("/admin/policy",
		middleware.JWTProtected(cfg),
		middleware.PolicyManagerRequired(),
	)
	policyGroup.Get("/filters", policyHandler.ListFilters)
	policyGroup.Get("/filters/:id", policyHandler.GetFilter)
	policyGroup.Put("/filters/:id", policyHandler.UpsertFilter)
	policyGroup.Delete("/filters/:id", policyHandler.DeleteFilter)
	policyGroup.Get("/rules", policyHandler.ListRules)
	policyGroup.Get("/rules/:id", policyHandler.GetRule)
	policyGroup.Put("/rules/:id", policyHandler.UpsertRule)
	policyGroup.Delete("/rules/:id", policyHandler.DeleteRule)

	// Account administration (admin token or admin role)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(cfg))
	admin.Post("/moderators", authHandler.RegisterElevated)
}
