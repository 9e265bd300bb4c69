package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Token holds the current signed access/refresh token pair for one user.
// A user has at most one Token document; every token-issuing operation
// overwrites the pair in place, and email verification, password reset and
// logout delete the document.
type Token struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	AccessToken  string             `bson:"accessToken,omitempty" json:"accessToken,omitempty"`
	RefreshToken string             `bson:"refreshToken,omitempty" json:"refreshToken,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
