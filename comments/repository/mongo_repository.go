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
	"github.com/qolzam/forum/comments/models"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/database/mongodb"
	"github.com/qolzam/forum/votes/targets"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the comments collection.
const CollectionName = "comments"

type mongoCommentRepository struct {
	targets.MongoStore
}

// NewMongoCommentRepository creates a repository over the comments collection.
func NewMongoCommentRepository(client *mongodb.Client) CommentRepository {
	return &mongoCommentRepository{MongoStore: targets.MongoStore{Coll: client.Collection(CollectionName)}}
}

func (r *mongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if _, err := r.Coll.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to create comment: %w", mongodb.TranslateError(err))
	}
	return nil
}

func (r *mongoCommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.Coll.FindOne(ctx, bson.M{targets.FieldID: id}).Decode(&comment); err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", mongodb.TranslateError(err))
	}
	return &comment, nil
}

func (r *mongoCommentRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{targets.FieldID: id, targets.FieldDeleted: bson.M{"$ne": true}},
		bson.M{"$set": bson.M{targets.FieldDeleted: true, "deletedAt": at, targets.FieldUpdatedAt: at}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", mongodb.TranslateError(err))
	}
	if res.MatchedCount == 0 {
		return interfaces.ErrNoDocuments
	}
	return nil
}

func (r *mongoCommentRepository) ListByPost(ctx context.Context, postID uuid.UUID, sort string, offset, limit int) ([]models.Comment, error) {
	order := bson.D{{Key: targets.FieldScore, Value: -1}, {Key: targets.FieldCreatedAt, Value: 1}}
	if sort == models.SortNew {
		order = bson.D{{Key: targets.FieldCreatedAt, Value: -1}}
	}
	opts := options.Find().SetSort(order).SetSkip(int64(offset)).SetLimit(int64(limit))

	filter := bson.M{"postId": postID, targets.FieldDeleted: bson.M{"$ne": true}}
	cursor, err := r.Coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", mongodb.TranslateError(err))
	}
	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (r *mongoCommentRepository) EnsureIndexes(ctx context.Context) error {
	return r.MongoStore.EnsureIndexes(ctx,
		mongo.IndexModel{Keys: bson.D{{Key: "postId", Value: 1}, {Key: targets.FieldScore, Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "postId", Value: 1}, {Key: targets.FieldCreatedAt, Value: -1}}},
	)
}
