package routes

import (
	"auth-service/internal/handlers"
	"auth-service/internal/middleware"
	"auth-service/internal/repository"
	"auth-service/internal/utils"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, h *handlers.Handler, tm *utils.TokenManager, users repository.UserRepository) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	auth := api.Group("/auth")

	auth.Post("/signup", h.Signup)
	auth.Post("/login", h.Login)
	auth.Get("/verify-email/:userId/:token", h.VerifyEmail)
	auth.Post("/logout", h.Logout)
	auth.Post("/refresh-token", h.RefreshToken)
	auth.Post("/forgot-password", h.ForgotPassword)
	auth.Post("/reset-password/:userId/:token", h.ResetPassword)

	requireAuth := middleware.RequireAuth(tm, users)
	auth.Get("/profile", requireAuth, h.GetProfile)
	auth.Patch("/update/:userId", requireAuth, h.UpdateProfile)
	auth.Delete("/remove/:userId", requireAuth, h.Remove)
}
