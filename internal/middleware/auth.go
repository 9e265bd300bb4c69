package middleware

import (
	"errors"
	"strings"

	"auth-service/internal/repository"
	"auth-service/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequireAuth validates the access token from the Authorization header (or
// the accessToken cookie as a fallback), loads the user document and stores it
// under the "authUser" local for handlers.
func RequireAuth(tm *utils.TokenManager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			token = c.Cookies("accessToken")
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Auth Failed")
		}

		userID, err := tm.VerifyAccessToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Auth Failed")
		}

		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Auth Failed")
		}

		user, err := users.FindByID(c.Context(), oid)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Auth Failed")
			}
			return fiber.ErrInternalServerError
		}

		c.Locals("authUser", user)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
