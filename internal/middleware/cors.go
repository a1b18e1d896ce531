package middleware

import (
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS lets the tour editor and embedded viewers call the API from other
// origins. Preflights are cached for ten minutes.
func CORS(cfg config.ServerConfig) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  fiber.HeaderOrigin + ", " + fiber.HeaderContentType + ", " + fiber.HeaderAuthorization + ", " + fiber.HeaderAccept,
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: fiber.HeaderXRequestID,
		MaxAge:        600,
	})
}
