package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	tourHandler *handlers.TourHandler,
	panoramaHandler *handlers.PanoramaHandler,
	hotspotHandler *handlers.HotspotHandler,
	adminHandler *handlers.AdminHandler,
	uploadHandler *handlers.UploadHandler,
) {
	api := app.Group("/api")

	// General API rate limiter per IP; disabled when max is 0.
	if cfg.Server.RateLimitMax > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:               cfg.Server.RateLimitMax,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		}))
	}

	api.Get("/health", healthHandler.Check)
	api.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Uploaded images, public by generated name.
	api.Get("/uploads/:filename", uploadHandler.Serve)

	// Auth: public
	auth := api.Group("/auth")
	if cfg.Server.RateLimitMax > 0 {
		// Stricter limit against credential stuffing.
		auth.Use(limiter.New(limiter.Config{
			Max:               10,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		}))
	}
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes take the middleware per route so the public tour
	// endpoints below stay reachable without a token.
	jwt := middleware.JWTProtected(cfg.JWT.Secret)
	user := middleware.LoadUser(db)

	api.Post("/auth/logout", jwt, user, authHandler.Logout)
	api.Get("/auth/me", jwt, user, authHandler.Me)
	api.Delete("/auth/account", jwt, user, authHandler.DeleteAccount)

	// Public tour access
	api.Get("/tours/public/:id", tourHandler.GetPublic)
	api.Get("/tours/public/:id/viewer", tourHandler.Viewer)
	api.Post("/tours/public/:id/views", tourHandler.IncrementViews)

	// Tours. /stats is registered before /:id.
	api.Get("/tours", jwt, user, tourHandler.List)
	api.Post("/tours", jwt, user, tourHandler.Create)
	api.Get("/tours/stats", jwt, user, tourHandler.Stats)
	api.Get("/tours/:id", jwt, user, tourHandler.Get)
	api.Put("/tours/:id", jwt, user, tourHandler.Update)
	api.Delete("/tours/:id", jwt, user, tourHandler.Delete)
	api.Post("/tours/:id/duplicate", jwt, user, tourHandler.Duplicate)

	// Panoramas. /order is registered before /:id.
	api.Get("/tours/:tourId/panoramas", jwt, user, panoramaHandler.List)
	api.Post("/tours/:tourId/panoramas", jwt, user, panoramaHandler.Upload)
	api.Put("/tours/:tourId/panoramas/order", jwt, user, panoramaHandler.Reorder)
	api.Put("/tours/:tourId/panoramas/:id", jwt, user, panoramaHandler.Update)
	api.Delete("/tours/:tourId/panoramas/:id", jwt, user, panoramaHandler.Delete)
	api.Get("/tours/:tourId/panoramas/:id/hotspots", jwt, user, hotspotHandler.ListByPanorama)

	// Hotspots
	api.Get("/tours/:tourId/hotspots", jwt, user, hotspotHandler.List)
	api.Post("/tours/:tourId/hotspots", jwt, user, hotspotHandler.Create)
	api.Put("/tours/:tourId/hotspots/:id", jwt, user, hotspotHandler.Update)
	api.Delete("/tours/:tourId/hotspots/:id", jwt, user, hotspotHandler.Delete)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", jwt, user, middleware.AdminRequired())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id", adminHandler.UpdateUser)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
}
