package handlers

import (
	"auth-service/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthUser returns the user loaded by the auth middleware, stored under the
// "authUser" local.
func AuthUser(c *fiber.Ctx) (*models.User, bool) {
	u, ok := c.Locals("authUser").(*models.User)
	return u, ok && u != nil
}
