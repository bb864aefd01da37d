package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/crisisconnect/moderation/internal/models"
)

// ModeratorID extracts the authenticated moderator's UUID from JWT claims.
func ModeratorID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

// ModeratorRole extracts the role claim, defaulting to junior when absent.
func ModeratorRole(c *fiber.Ctx) models.ModeratorRole {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return models.RoleJunior
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.RoleJunior
	}
	role, ok := claims["role"].(string)
	if !ok {
		return models.RoleJunior
	}
	return models.ModeratorRole(role)
}
