package repository

import (
	"context"
	"errors"
	"time"

	"auth-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTokenRepo struct {
	col *mongo.Collection
}

// NewMongoTokenRepo builds the tokens repository with a unique index on
// userId, keeping the one-document-per-user invariant at the store level.
func NewMongoTokenRepo(db *mongo.Database, collection string) TokenRepository {
	col := db.Collection(collection)
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &mongoTokenRepo{col: col}
}

func (r *mongoTokenRepo) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Token, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

func (r *mongoTokenRepo) FindByRefreshToken(ctx context.Context, refreshToken string) (*models.Token, error) {
	return r.findOne(ctx, bson.M{"refreshToken": refreshToken})
}

func (r *mongoTokenRepo) FindByUserAndRefreshToken(ctx context.Context, userID primitive.ObjectID, refreshToken string) (*models.Token, error) {
	return r.findOne(ctx, bson.M{"userId": userID, "refreshToken": refreshToken})
}

func (r *mongoTokenRepo) findOne(ctx context.Context, filter bson.M) (*models.Token, error) {
	var t models.Token
	err := r.col.FindOne(ctx, filter).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SetPair replaces the user's current pair in one round-trip. Concurrent
// issuance still ends with a single document; the last write wins.
func (r *mongoTokenRepo) SetPair(ctx context.Context, userID primitive.ObjectID, accessToken, refreshToken string) (*models.Token, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"userId":    userID,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var t models.Token
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *mongoTokenRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (r *mongoTokenRepo) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"refreshToken": refreshToken})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTokenNotFound
	}
	return nil
}
