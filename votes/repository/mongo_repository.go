// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"errors"
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

// CollectionName is the ledger collection.
const CollectionName = "votes"

// SlotIndexName is the unique index guarding one record per slot.
const SlotIndexName = "votes_slot_unique"

type mongoVoteRepository struct {
	coll *mongo.Collection
}

// NewMongoVoteRepository creates a ledger backed by the votes collection.
func NewMongoVoteRepository(client *mongodb.Client) VoteRepository {
	return &mongoVoteRepository{coll: client.Collection(CollectionName)}
}

func slotFilter(key models.VoteKey) bson.M {
	return bson.M{
		"voterId":    key.Voter,
		"targetType": key.TargetType,
		"targetId":   key.TargetID,
	}
}

func (r *mongoVoteRepository) Find(ctx context.Context, key models.VoteKey) (*models.VoteRecord, error) {
	var rec models.VoteRecord
	err := r.coll.FindOne(ctx, slotFilter(key)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vote: %w", mongodb.TranslateError(err))
	}
	return &rec, nil
}

func (r *mongoVoteRepository) Insert(ctx context.Context, rec *models.VoteRecord) error {
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert vote: %w", mongodb.TranslateError(err))
	}
	return nil
}

func (r *mongoVoteRepository) UpdateType(ctx context.Context, key models.VoteKey, from, to models.VoteType, at time.Time) error {
	filter := slotFilter(key)
	filter["voteType"] = from

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"voteType": to, "updatedAt": at}})
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", mongodb.TranslateError(err))
	}
	if res.MatchedCount == 0 {
		return interfaces.ErrNoDocuments
	}
	return nil
}

func (r *mongoVoteRepository) Delete(ctx context.Context, key models.VoteKey, expected models.VoteType) error {
	filter := slotFilter(key)
	filter["voteType"] = expected

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", mongodb.TranslateError(err))
	}
	if res.DeletedCount == 0 {
		return interfaces.ErrNoDocuments
	}
	return nil
}

func (r *mongoVoteRepository) FindByVoterAndTargets(ctx context.Context, voter uuid.UUID, targetType models.TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]models.VoteType, error) {
	result := make(map[uuid.UUID]models.VoteType, len(targetIDs))
	if len(targetIDs) == 0 {
		return result, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{
		"voterId":    voter,
		"targetType": targetType,
		"targetId":   bson.M{"$in": targetIDs},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", mongodb.TranslateError(err))
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var rec models.VoteRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode vote: %w", err)
		}
		result[rec.TargetID] = rec.VoteType
	}
	return result, cursor.Err()
}

type tally struct {
	ID struct {
		TargetID uuid.UUID       `bson:"targetId"`
		VoteType models.VoteType `bson:"voteType"`
	} `bson:"_id"`
	N int64 `bson:"n"`
}

func (r *mongoVoteRepository) aggregate(ctx context.Context, match bson.M, groupByTarget bool) ([]tally, error) {
	id := bson.M{"voteType": "$voteType"}
	if groupByTarget {
		id["targetId"] = "$targetId"
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": id, "n": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", mongodb.TranslateError(err))
	}
	var rows []tally
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode vote counts: %w", err)
	}
	return rows, nil
}

func addTally(c *models.Counts, v models.VoteType, n int64) {
	switch v {
	case models.VoteUp:
		c.Up += n
	case models.VoteDown:
		c.Down += n
	}
}

func (r *mongoVoteRepository) CountByTargets(ctx context.Context, targetType models.TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]models.Counts, error) {
	result := make(map[uuid.UUID]models.Counts, len(targetIDs))
	if len(targetIDs) == 0 {
		return result, nil
	}

	rows, err := r.aggregate(ctx, bson.M{"targetType": targetType, "targetId": bson.M{"$in": targetIDs}}, true)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		c := result[row.ID.TargetID]
		addTally(&c, row.ID.VoteType, row.N)
		result[row.ID.TargetID] = c
	}
	return result, nil
}

func (r *mongoVoteRepository) CountByVoter(ctx context.Context, voter uuid.UUID) (models.Counts, error) {
	var counts models.Counts
	rows, err := r.aggregate(ctx, bson.M{"voterId": voter}, false)
	if err != nil {
		return counts, err
	}
	for _, row := range rows {
		addTally(&counts, row.ID.VoteType, row.N)
	}
	return counts, nil
}

func (r *mongoVoteRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "voterId", Value: 1}, {Key: "targetType", Value: 1}, {Key: "targetId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(SlotIndexName),
		},
		{
			Keys:    bson.D{{Key: "targetType", Value: 1}, {Key: "targetId", Value: 1}, {Key: "voteType", Value: 1}},
			Options: options.Index().SetName("votes_target"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create vote indexes: %w", err)
	}
	return nil
}
