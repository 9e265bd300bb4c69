package services

import (
	"context"
	"errors"

	"auth-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEmailTaken         = errors.New("email address already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenNotFound      = errors.New("token not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailNotRegistered = errors.New("email not associated with any account")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidUserID      = errors.New("invalid user id")
)

// SignupResult carries the issued credential pair and the email-verification
// link returned in the signup response body.
type SignupResult struct {
	Tokens          models.AuthTokens
	VerifyEmailLink string
}

// LoginResult is the outcome of a credential check that passed. Verified is
// false for pending accounts; their response still carries the fresh pair and
// a verification link, wrapped in an error envelope by the handler.
type LoginResult struct {
	User            *models.User
	Tokens          models.AuthTokens
	Verified        bool
	VerifyEmailLink string
}

// AuthService orchestrates user and token store lookups, token issuance and
// email notifications for every auth operation.
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*SignupResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyEmail(ctx context.Context, userID, token string) (alreadyVerified bool, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshTokens(ctx context.Context, refreshToken string) (*models.AuthTokens, error)
	ForgotPassword(ctx context.Context, email string) (resetLink string, err error)
	ResetPassword(ctx context.Context, userID, token, password, confirmPassword string) (loginLink string, err error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, actor *models.User, userID string, req *models.UpdateProfileRequest, imagePath string) (*models.Profile, error)
	Remove(ctx context.Context, actor *models.User, userID string) error
}
