// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"fmt"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/mongodb"
	"github.com/qolzam/forum/users/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the users collection.
const CollectionName = "users"

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a repository over the users collection.
func NewMongoUserRepository(client *mongodb.Client) UserRepository {
	return &mongoUserRepository{coll: client.Collection(CollectionName)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", mongodb.TranslateError(err))
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"objectId": id}).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to find user: %w", mongodb.TranslateError(err))
	}
	return &user, nil
}

func (r *mongoUserRepository) IncrementReputation(ctx context.Context, id uuid.UUID, delta models.ReputationDelta) (*ReputationUpdate, error) {
	fields := delta.Fields()
	if len(fields) == 0 {
		return &ReputationUpdate{}, nil
	}

	res, err := mongodb.FlooredIncrement(ctx, r.coll, mongodb.FloorUpdate{
		Filter: bson.M{"objectId": id},
		Deltas: fields,
		Upsert: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update reputation: %w", err)
	}

	// Untouched counters are not reported back; only the adjusted paths are known here.
	update := &ReputationUpdate{Clamped: res.Clamped}
	update.Reputation.UpvotesGiven = res.After[models.FieldUpvotesGiven]
	update.Reputation.DownvotesGiven = res.After[models.FieldDownvotesGiven]
	update.Reputation.UpvotesReceived = res.After[models.FieldUpvotesReceived]
	update.Reputation.DownvotesReceived = res.After[models.FieldDownvotesReceived]
	return update, nil
}

func (r *mongoUserRepository) SetReputation(ctx context.Context, id uuid.UUID, rep models.Reputation) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"objectId": id},
		bson.M{"$set": bson.M{"reputation": rep}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to set reputation: %w", mongodb.TranslateError(err))
	}
	return nil
}

func (r *mongoUserRepository) Scan(ctx context.Context, after uuid.UUID, limit int) ([]models.User, error) {
	filter := bson.M{}
	if after != uuid.Nil {
		filter["objectId"] = bson.M{"$gt": after}
	}
	opts := options.Find().SetSort(bson.D{{Key: "objectId", Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", mongodb.TranslateError(err))
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *mongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "objectId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}
