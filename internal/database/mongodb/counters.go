// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mongodb

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FloorResult describes one floored counter update.
type FloorResult struct {
	Before  map[string]int64
	After   map[string]int64
	Clamped []string
}

// FloorUpdate describes a floored counter update on a single document.
type FloorUpdate struct {
	Filter interface{}
	// Deltas are added to numeric fields; dotted paths address embedded documents.
	Deltas map[string]int64
	// Set fields are assigned literally in the same update.
	Set bson.M
	// Upsert creates the document from the filter's equality fields when nothing matches.
	Upsert bool
}

// FlooredIncrement atomically adds the deltas of u, flooring every result at zero.
// Returns interfaces.ErrNoDocuments when nothing matches and Upsert is off.
func FlooredIncrement(ctx context.Context, coll *mongo.Collection, u FloorUpdate) (*FloorResult, error) {
	fields := sortedFields(u.Deltas)
	deltas := u.Deltas

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(projection(fields)).
		SetUpsert(u.Upsert)

	var before bson.M
	err := coll.FindOneAndUpdate(ctx, u.Filter, floorPipeline(deltas, u.Set), opts).Decode(&before)
	switch {
	case u.Upsert && errors.Is(err, mongo.ErrNoDocuments):
		// Inserted: every field started from zero.
		before = bson.M{}
	case err != nil:
		return nil, TranslateError(err)
	}

	result := &FloorResult{
		Before: make(map[string]int64, len(fields)),
		After:  make(map[string]int64, len(fields)),
	}
	for _, field := range fields {
		prev := numberAt(before, field)
		next := prev + deltas[field]
		if next < 0 {
			next = 0
			result.Clamped = append(result.Clamped, field)
		}
		result.Before[field] = prev
		result.After[field] = next
	}
	return result, nil
}

// floorPipeline builds an update pipeline computing max(0, field+delta) server side.
func floorPipeline(deltas map[string]int64, set bson.M) mongo.Pipeline {
	stage := bson.D{}
	for _, field := range sortedFields(deltas) {
		stage = append(stage, bson.E{Key: field, Value: bson.M{
			"$max": bson.A{0, bson.M{
				"$add": bson.A{bson.M{"$ifNull": bson.A{"$" + field, 0}}, deltas[field]},
			}},
		}})
	}
	setKeys := make([]string, 0, len(set))
	for key := range set {
		setKeys = append(setKeys, key)
	}
	sort.Strings(setKeys)
	for _, key := range setKeys {
		stage = append(stage, bson.E{Key: key, Value: bson.M{"$literal": set[key]}})
	}
	return mongo.Pipeline{{{Key: "$set", Value: stage}}}
}

func projection(fields []string) bson.M {
	p := bson.M{"_id": 1}
	for _, field := range fields {
		p[field] = 1
	}
	return p
}

func sortedFields(deltas map[string]int64) []string {
	fields := make([]string, 0, len(deltas))
	for field := range deltas {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// numberAt reads a dotted path from a decoded document. Missing values read as zero.
func numberAt(doc interface{}, path string) int64 {
	head, rest, nested := strings.Cut(path, ".")

	var value interface{}
	switch d := doc.(type) {
	case bson.M:
		value = d[head]
	case map[string]interface{}:
		value = d[head]
	case bson.D:
		value = d.Map()[head]
	default:
		return 0
	}

	if nested {
		return numberAt(value, rest)
	}

	switch n := value.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case primitive.Decimal128:
		if i, _, err := n.BigInt(); err == nil {
			return i.Int64()
		}
	}
	return 0
}
