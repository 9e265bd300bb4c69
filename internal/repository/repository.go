package repository

import (
	"context"
	"errors"

	"auth-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("token not found")
)

// UserRepository defines data operations over the users collection.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindByEmail matches the email exactly.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByEmailFold matches the email case-insensitively.
	FindByEmailFold(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TokenRepository defines data operations over the tokens collection. A user
// owns at most one token document.
type TokenRepository interface {
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Token, error)
	FindByRefreshToken(ctx context.Context, refreshToken string) (*models.Token, error)
	FindByUserAndRefreshToken(ctx context.Context, userID primitive.ObjectID, refreshToken string) (*models.Token, error)
	// SetPair overwrites the user's token pair in a single upsert, creating
	// the document when absent.
	SetPair(ctx context.Context, userID primitive.ObjectID, accessToken, refreshToken string) (*models.Token, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	DeleteByRefreshToken(ctx context.Context, refreshToken string) error
}
