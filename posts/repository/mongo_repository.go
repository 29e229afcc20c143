// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"fmt"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/database/mongodb"
	"github.com/qolzam/forum/posts/models"
	"github.com/qolzam/forum/votes/targets"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the posts collection.
const CollectionName = "posts"

type mongoPostRepository struct {
	targets.MongoStore
}

// NewMongoPostRepository creates a repository over the posts collection.
func NewMongoPostRepository(client *mongodb.Client) PostRepository {
	return &mongoPostRepository{MongoStore: targets.MongoStore{Coll: client.Collection(CollectionName)}}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	if _, err := r.Coll.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("failed to create post: %w", mongodb.TranslateError(err))
	}
	return nil
}

func (r *mongoPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.Coll.FindOne(ctx, bson.M{targets.FieldID: id}).Decode(&post); err != nil {
		return nil, fmt.Errorf("failed to find post: %w", mongodb.TranslateError(err))
	}
	return &post, nil
}

func (r *mongoPostRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{targets.FieldID: id, targets.FieldDeleted: bson.M{"$ne": true}},
		bson.M{"$set": bson.M{targets.FieldDeleted: true, "deletedAt": at, targets.FieldUpdatedAt: at}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", mongodb.TranslateError(err))
	}
	if res.MatchedCount == 0 {
		return interfaces.ErrNoDocuments
	}
	return nil
}

func (r *mongoPostRepository) List(ctx context.Context, sort string, offset, limit int) ([]models.Post, error) {
	order := bson.D{{Key: targets.FieldScore, Value: -1}, {Key: targets.FieldCreatedAt, Value: -1}}
	if sort == models.SortNew {
		order = bson.D{{Key: targets.FieldCreatedAt, Value: -1}}
	}
	opts := options.Find().SetSort(order).SetSkip(int64(offset)).SetLimit(int64(limit))

	cursor, err := r.Coll.Find(ctx, bson.M{targets.FieldDeleted: bson.M{"$ne": true}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", mongodb.TranslateError(err))
	}
	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

func (r *mongoPostRepository) EnsureIndexes(ctx context.Context) error {
	return r.MongoStore.EnsureIndexes(ctx,
		mongo.IndexModel{Keys: bson.D{{Key: targets.FieldDeleted, Value: 1}, {Key: targets.FieldScore, Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: targets.FieldDeleted, Value: 1}, {Key: targets.FieldCreatedAt, Value: -1}}},
	)
}
