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
	"github.com/qolzam/forum/notifications/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the notifications collection.
const CollectionName = "notifications"

type mongoNotificationRepository struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepository creates a repository over the notifications collection.
func NewMongoNotificationRepository(client *mongodb.Client) NotificationRepository {
	return &mongoNotificationRepository{coll: client.Collection(CollectionName)}
}

func (r *mongoNotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", mongodb.TranslateError(err))
	}
	return nil
}

func (r *mongoNotificationRepository) ListByRecipient(ctx context.Context, recipient uuid.UUID, offset, limit int) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"recipient": recipient}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", mongodb.TranslateError(err))
	}
	list := []models.Notification{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return list, nil
}

func (r *mongoNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "objectId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", mongodb.TranslateError(err))
	}
	return nil
}
