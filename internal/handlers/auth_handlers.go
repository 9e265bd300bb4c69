package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"auth-service/internal/models"
	"auth-service/internal/services"
	"auth-service/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	accessCookieMaxAge  = 24 * 60 * 60
	refreshCookieMaxAge = 7 * 24 * 60 * 60
)

// Handler exposes the auth operations as fiber handlers.
type Handler struct {
	svc       services.AuthService
	uploadDir string
	secure    bool
	log       *zap.Logger
}

func NewHandler(svc services.AuthService, uploadDir string, secureCookies bool, log *zap.Logger) *Handler {
	return &Handler{svc: svc, uploadDir: uploadDir, secure: secureCookies, log: log}
}

// Signup handles POST /auth/signup.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if msg := utils.ValidateStruct(&req); msg != "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, msg)
	}

	res, err := h.svc.Signup(c.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return fiber.NewError(fiber.StatusUnprocessableEntity,
				fmt.Sprintf("E-Mail address %s already exists, please pick a different one.", req.Email))
		}
		return h.internal(c, "signup", err)
	}

	data := fiber.Map{
		"user": fiber.Map{
			"accessToken":     res.Tokens.AccessToken,
			"refreshToken":    res.Tokens.RefreshToken,
			"verifyEmailLink": res.VerifyEmailLink,
		},
	}
	msg := fmt.Sprintf("Signup successful. An email with a verification link has been sent to %s. Please verify your email first, or use the verification link included in this response.", req.Email)
	return c.Status(fiber.StatusCreated).JSON(utils.OK(fiber.StatusCreated, msg, data))
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if msg := utils.ValidateStruct(&req); msg != "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, msg)
	}

	res, err := h.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Auth Failed (Invalid Credentials)")
		case errors.Is(err, services.ErrInvalidCredentials):
			return fiber.NewError(fiber.StatusUnauthorized, "Auth Failed (Invalid Credentials)")
		default:
			return h.internal(c, "login", err)
		}
	}

	// Pending accounts get a fresh pair and a verification link inside an
	// error envelope.
	if !res.Verified {
		data := fiber.Map{
			"accessToken":     res.Tokens.AccessToken,
			"refreshToken":    res.Tokens.RefreshToken,
			"verifyEmailLink": res.VerifyEmailLink,
		}
		msg := fmt.Sprintf("Your email has not been verified. An email with a verification link has been sent to %s. Please verify your email first, or use the verification link included in this response.", res.User.Email)
		return c.Status(fiber.StatusUnauthorized).JSON(utils.Fail(fiber.StatusUnauthorized, msg, data))
	}

	h.setAuthCookies(c, res.Tokens.AccessToken, res.Tokens.RefreshToken)

	data := fiber.Map{
		"user": fiber.Map{
			"_id":          res.User.ID,
			"email":        res.User.Email,
			"name":         res.User.Name,
			"role":         res.User.Role,
			"isVerified":   res.User.IsVerified,
			"isDeleted":    res.User.IsDeleted,
			"status":       res.User.Status,
			"accessToken":  res.Tokens.AccessToken,
			"refreshToken": res.Tokens.RefreshToken,
		},
	}
	return c.Status(fiber.StatusOK).JSON(utils.OK(fiber.StatusOK, "Auth logged in successful.", data))
}

// VerifyEmail handles GET /auth/verify-email/:userId/:token.
func (h *Handler) VerifyEmail(c *fiber.Ctx) error {
	already, err := h.svc.VerifyEmail(c.Context(), c.Params("userId"), c.Params("token"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrTokenNotFound):
			return fiber.NewError(fiber.StatusBadRequest, "Email verification token is invalid or has expired.")
		default:
			return h.internal(c, "verify email", err)
		}
	}

	msg := "Your account has been successfully verified. Please login."
	if already {
		msg = "User has already been verified. Please login."
	}
	return c.Status(fiber.StatusOK).JSON(utils.OK(fiber.StatusOK, msg, nil))
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(c *fiber.Ctx) error {
	var req models.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Bad Request")
	}

	if err := h.svc.Logout(c.Context(), req.RefreshToken); err != nil {
		switch {
		case errors.Is(err, services.ErrTokenNotFound), errors.Is(err, services.ErrInvalidToken):
			return fiber.NewError(fiber.StatusBadRequest, "Bad Request")
		default:
			return h.internal(c, "logout", err)
		}
	}

	h.clearAuthCookies(c)
	return c.Status(fiber.StatusOK).JSON(utils.OK(fiber.StatusOK, "Successfully logged out.", nil))
}

// RefreshToken handles POST /auth/refresh-token.
func (h *Handler) RefreshToken(c *fiber.Ctx) error {
	var req models.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Bad Request")
	}

	tokens, err := h.svc.RefreshTokens(c.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenNotFound), errors.Is(err, services.ErrInvalidToken):
			return fiber.NewError(fiber.StatusBadRequest, "Bad Request")
		default:
			return h.internal(c, "refresh token", err)
		}
	}

	h.setAuthCookies(c, tokens.AccessToken, tokens.RefreshToken)

	data := fiber.Map{
		"user": fiber.Map{
			"accessToken":  tokens.AccessToken,
			"refreshToken": tokens.RefreshToken,
		},
	}
	return c.Status(fiber.StatusOK).JSON(utils.OK(fiber.StatusOK, "Auth logged in successful.", data))
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if msg := utils.ValidateStruct(&req); msg != "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, msg)
	}

	link, err := h.svc.ForgotPassword(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrEmailNotRegistered) {
			// Account existence is deliberately disclosed here.
			return fiber.NewError(fiber.StatusUnauthorized,
				fmt.Sprintf("The email address %s is not associated with any account. Double-check your email address and try again.", req.Email))
		}
		return h.internal(c, "forgot password", err)
	}

	data := fiber.Map{
		"user": fiber.Map{
			"resetPasswordToken": link,
		},
	}
	msg := fmt.Sprintf("An email with a password reset link has been sent to %s. Please check it to reset your password, or use the link included in this response.", req.Email)
	return c.Status(fiber.StatusOK).JSON(utils.OK(fiber.StatusOK, msg, data))
}

// ResetPassword handles POST /auth/reset-password/:userId/:token.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if msg := utils.ValidateStruct(&req); msg != "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, msg)
	}

	loginLink, err := h.svc.ResetPassword(c.Context(), c.Params("userId"), c.Params("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrTokenNotFound):
			return fiber.NewError(fiber.StatusUnauthorized, "Password reset token is invalid or has expired.")
		case errors.Is(err, services.ErrInvalidToken):
			return fiber.NewError(fiber.StatusBadRequest, "Bad Request")
		default:
			return h.internal(c, "reset password", err)
		}
	}

	data := fiber.Map{
		"user": fiber.Map{
			"loginLink": loginLink,
		},
	}
	return c.Status(fiber.StatusOK).JSON(utils.OK(fiber.StatusOK, "Your password has been reset successfully. Please login.", data))
}

// GetProfile handles GET /auth/profile.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	actor, ok := AuthUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Auth Failed")
	}

	profile, err := h.svc.GetProfile(c.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Auth Failed")
		}
		return h.internal(c, "get profile", err)
	}
	return c.Status(fiber.StatusOK).JSON(utils.OK(fiber.StatusOK, "Successfully found user profile.", fiber.Map{"user": profile}))
}

// UpdateProfile handles PATCH /auth/update/:userId. Accepts JSON or multipart
// form data with an optional profileImage file.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	actor, ok := AuthUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Auth Failed")
	}

	userID := c.Params("userId")
	if _, err := primitive.ObjectIDFromHex(userID); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request")
	}

	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if msg := utils.ValidateStruct(&req); msg != "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, msg)
	}

	imagePath, err := h.saveProfileImage(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	profile, err := h.svc.UpdateProfile(c.Context(), actor, userID, &req, imagePath)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidUserID):
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request")
		case errors.Is(err, services.ErrUserNotFound):
			return fiber.NewError(fiber.StatusBadRequest, "Bad Request")
		case errors.Is(err, services.ErrForbidden):
			return fiber.NewError(fiber.StatusForbidden, "Auth Failed (Unauthorized)")
		case errors.Is(err, services.ErrEmailTaken):
			return fiber.NewError(fiber.StatusUnprocessableEntity,
				fmt.Sprintf("E-Mail address %s already exists, please pick a different one.", req.Email))
		default:
			return h.internal(c, "update profile", err)
		}
	}

	msg := fmt.Sprintf("Successfully updated user by ID: %s", userID)
	return c.Status(fiber.StatusOK).JSON(utils.OK(fiber.StatusOK, msg, fiber.Map{"user": profile}))
}

// Remove handles DELETE /auth/remove/:userId.
func (h *Handler) Remove(c *fiber.Ctx) error {
	actor, ok := AuthUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Auth Failed")
	}

	userID := c.Params("userId")
	if err := h.svc.Remove(c.Context(), actor, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidUserID):
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request")
		case errors.Is(err, services.ErrUserNotFound):
			return fiber.NewError(fiber.StatusBadRequest, "Bad Request")
		case errors.Is(err, services.ErrForbidden):
			return fiber.NewError(fiber.StatusForbidden, "Auth Failed (Unauthorized)")
		default:
			return h.internal(c, "remove user", err)
		}
	}

	msg := fmt.Sprintf("Successfully deleted user by ID %s", userID)
	return c.Status(fiber.StatusOK).JSON(utils.OK(fiber.StatusOK, msg, nil))
}

// saveProfileImage stores an optional uploaded profile image under the upload
// dir with a random filename and returns its public path, or "" when no file
// was submitted.
func (h *Handler) saveProfileImage(c *fiber.Ctx) (string, error) {
	file, err := c.FormFile("profileImage")
	if err != nil {
		return "", nil
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	if !allowed[ext] {
		return "", errors.New("only jpg/jpeg/png/webp images are allowed")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", errors.New("failed to store uploaded file")
	}
	name := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		return "", errors.New("failed to store uploaded file")
	}
	return "/static/uploads/users/" + name, nil
}

func (h *Handler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		MaxAge:   accessCookieMaxAge,
		HTTPOnly: true,
		Secure:   h.secure,
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		MaxAge:   refreshCookieMaxAge,
		HTTPOnly: true,
		Secure:   h.secure,
	})
}

func (h *Handler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   h.secure,
		})
	}
}

// internal logs the cause and collapses it to a generic 500.
func (h *Handler) internal(c *fiber.Ctx, op string, err error) error {
	h.log.Error("internal failure",
		zap.String("op", op),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return fiber.ErrInternalServerError
}
