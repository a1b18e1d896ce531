package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const principalKey = "principal"

func unauthorized(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error: true, Code: code, Message: message,
	})
}

// JWTProtected verifies the bearer access token and stores it in
// c.Locals("user").
func JWTProtected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwt.SigningMethodHS256.Alg(), Key: []byte(secret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			switch {
			case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
				return unauthorized(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Missing or malformed bearer token")
			case errors.Is(err, jwt.ErrTokenExpired):
				return unauthorized(c, fiber.StatusUnauthorized, "TOKEN_EXPIRED", "Access token has expired")
			default:
				return unauthorized(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Invalid access token")
			}
		},
	})
}

// LoadUser resolves the token subject to a live user. The role always comes
// from the database so demotions apply to tokens already issued.
func LoadUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return unauthorized(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Invalid token claims")
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return unauthorized(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Invalid token subject")
		}

		var user models.User
		if err := db.Select("id", "role", "is_active").First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return unauthorized(c, fiber.StatusUnauthorized, "USER_NOT_FOUND", "User not found")
			}
			return err
		}
		if !user.IsActive {
			return unauthorized(c, fiber.StatusForbidden, "ACCOUNT_INACTIVE", services.ErrAccountInactive.Error())
		}

		c.Locals(principalKey, services.Principal{UserID: user.ID, Role: user.Role})
		return c.Next()
	}
}

// GetPrincipal returns the caller stored by LoadUser.
func GetPrincipal(c *fiber.Ctx) (services.Principal, bool) {
	p, ok := c.Locals(principalKey).(services.Principal)
	return p, ok
}
