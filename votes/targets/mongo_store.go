// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package targets

import (
	"context"
	"fmt"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/database/mongodb"
	"github.com/qolzam/forum/votes/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Document fields shared by every votable collection.
const (
	FieldID            = "objectId"
	FieldAuthorID      = "authorId"
	FieldUpvoteCount   = "upvoteCount"
	FieldDownvoteCount = "downvoteCount"
	FieldScore         = "score"
	FieldCreatedAt     = "createdAt"
	FieldDeleted       = "deleted"
	FieldUpdatedAt     = "updatedAt"
)

// MongoStore implements the storage half of Target over a collection whose documents carry
// the shared votable fields. Repositories of votable kinds embed it.
type MongoStore struct {
	Coll *mongo.Collection
}

// LoadSnapshot reads the vote-relevant fields of id.
func (s MongoStore) LoadSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var snap Snapshot
	err := s.Coll.FindOne(ctx, bson.M{FieldID: id}).Decode(&snap)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.Coll.Name(), mongodb.TranslateError(err))
	}
	return &snap, nil
}

// ApplyVoteEffect adjusts both counters in one floored pipeline update.
func (s MongoStore) ApplyVoteEffect(ctx context.Context, id uuid.UUID, delta models.CounterDelta) (*CounterUpdate, error) {
	res, err := mongodb.FlooredIncrement(ctx, s.Coll, mongodb.FloorUpdate{
		Filter: bson.M{FieldID: id},
		Deltas: map[string]int64{
			FieldUpvoteCount:   delta.Up,
			FieldDownvoteCount: delta.Down,
		},
		Set: bson.M{FieldUpdatedAt: time.Now().UTC()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s counters: %w", s.Coll.Name(), err)
	}
	return &CounterUpdate{
		Counts:  models.Counts{Up: res.After[FieldUpvoteCount], Down: res.After[FieldDownvoteCount]},
		Clamped: res.Clamped,
	}, nil
}

// StoreScore sets the score field.
func (s MongoStore) StoreScore(ctx context.Context, id uuid.UUID, score float64) error {
	return s.set(ctx, id, bson.M{FieldScore: score})
}

// ResetCounts overwrites counters and score.
func (s MongoStore) ResetCounts(ctx context.Context, id uuid.UUID, counts models.Counts, score float64) error {
	return s.set(ctx, id, bson.M{
		FieldUpvoteCount:   counts.Up,
		FieldDownvoteCount: counts.Down,
		FieldScore:         score,
	})
}

func (s MongoStore) set(ctx context.Context, id uuid.UUID, fields bson.M) error {
	res, err := s.Coll.UpdateOne(ctx, bson.M{FieldID: id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", s.Coll.Name(), mongodb.TranslateError(err))
	}
	if res.MatchedCount == 0 {
		return interfaces.ErrNoDocuments
	}
	return nil
}

// Scan pages through the collection by id.
func (s MongoStore) Scan(ctx context.Context, after uuid.UUID, limit int) ([]Snapshot, error) {
	filter := bson.M{}
	if after != uuid.Nil {
		filter[FieldID] = bson.M{"$gt": after}
	}
	opts := options.Find().SetSort(bson.D{{Key: FieldID, Value: 1}}).SetLimit(int64(limit))

	cursor, err := s.Coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.Coll.Name(), mongodb.TranslateError(err))
	}
	var snaps []Snapshot
	if err := cursor.All(ctx, &snaps); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.Coll.Name(), err)
	}
	return snaps, nil
}

// CountsByAuthor sums counters over all of the author's documents, soft-deleted ones included.
func (s MongoStore) CountsByAuthor(ctx context.Context, authorID uuid.UUID) (models.Counts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{FieldAuthorID: authorID}}},
		{{Key: "$group", Value: bson.M{
			"_id":              nil,
			FieldUpvoteCount:   bson.M{"$sum": "$" + FieldUpvoteCount},
			FieldDownvoteCount: bson.M{"$sum": "$" + FieldDownvoteCount},
		}}},
	}
	cursor, err := s.Coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.Counts{}, fmt.Errorf("failed to sum %s counters: %w", s.Coll.Name(), mongodb.TranslateError(err))
	}
	var rows []models.Counts
	if err := cursor.All(ctx, &rows); err != nil {
		return models.Counts{}, fmt.Errorf("failed to decode %s counters: %w", s.Coll.Name(), err)
	}
	if len(rows) == 0 {
		return models.Counts{}, nil
	}
	return rows[0], nil
}

// EnsureIndexes creates the indexes the vote engine relies on.
func (s MongoStore) EnsureIndexes(ctx context.Context, extra ...mongo.IndexModel) error {
	indexes := append([]mongo.IndexModel{
		{Keys: bson.D{{Key: FieldID, Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: FieldAuthorID, Value: 1}}},
	}, extra...)
	if _, err := s.Coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", s.Coll.Name(), err)
	}
	return nil
}
