// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package targets defines the capability every votable entity kind implements, so the vote
// engine is written once against an interface instead of branching on the target type.
package targets

import (
	"context"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/votes/models"
)

// Snapshot is the vote-relevant state of a target.
type Snapshot struct {
	ID        uuid.UUID     `json:"objectId" bson:"objectId"`
	AuthorID  uuid.UUID     `json:"authorId" bson:"authorId"`
	Counts    models.Counts `json:"counts" bson:",inline"`
	Score     float64       `json:"score" bson:"score"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	Deleted   bool          `json:"deleted" bson:"deleted"`
}

// CounterUpdate is the outcome of an atomic counter adjustment.
type CounterUpdate struct {
	Counts models.Counts
	// Clamped lists the fields whose result would have been negative.
	Clamped []string
}

// Target is implemented once per votable kind.
type Target interface {
	Kind() models.TargetType

	// Load returns interfaces.ErrNoDocuments when the target does not exist.
	// Soft-deleted targets are returned with Deleted set.
	Load(ctx context.Context, id uuid.UUID) (*Snapshot, error)

	// ApplyVoteEffect atomically adds delta to the counters, flooring each at zero.
	ApplyVoteEffect(ctx context.Context, id uuid.UUID, delta models.CounterDelta) (*CounterUpdate, error)

	// StoreScore persists a freshly computed score.
	StoreScore(ctx context.Context, id uuid.UUID, score float64) error

	// ResetCounts overwrites counters and score, used by reconciliation.
	ResetCounts(ctx context.Context, id uuid.UUID, counts models.Counts, score float64) error

	// Scan pages through all targets ordered by id, starting after the given id (uuid.Nil for the start).
	Scan(ctx context.Context, after uuid.UUID, limit int) ([]Snapshot, error)

	// CountsByAuthor sums the counters of the author's content of this kind. Soft-deleted content
	// keeps the votes it received, so it is included.
	CountsByAuthor(ctx context.Context, authorID uuid.UUID) (models.Counts, error)

	// Rank computes the sort score of counts at now.
	Rank(counts models.Counts, createdAt, now time.Time) float64

	// NotificationType is the notification emitted to the author on a new upvote.
	NotificationType() string
}

// Registry resolves targets by kind.
type Registry struct {
	targets map[models.TargetType]Target
	order   []models.TargetType
}

// NewRegistry registers the given targets. A later target replaces an earlier one of the same kind.
func NewRegistry(targets ...Target) *Registry {
	r := &Registry{targets: make(map[models.TargetType]Target, len(targets))}
	for _, t := range targets {
		r.Register(t)
	}
	return r
}

// Register adds t.
func (r *Registry) Register(t Target) {
	if _, exists := r.targets[t.Kind()]; !exists {
		r.order = append(r.order, t.Kind())
	}
	r.targets[t.Kind()] = t
}

// Get returns the target for kind.
func (r *Registry) Get(kind models.TargetType) (Target, bool) {
	t, ok := r.targets[kind]
	return t, ok
}

// All returns the targets in registration order.
func (r *Registry) All() []Target {
	all := make([]Target, 0, len(r.order))
	for _, kind := range r.order {
		all = append(all, r.targets[kind])
	}
	return all
}

// ApplyFloored adds delta to counts in place, flooring each counter at zero, and returns the
// names of clamped fields. In-memory stores use it to match the MongoDB pipeline update.
func ApplyFloored(counts *models.Counts, delta models.CounterDelta) []string {
	var clamped []string
	counts.Up += delta.Up
	if counts.Up < 0 {
		counts.Up = 0
		clamped = append(clamped, FieldUpvoteCount)
	}
	counts.Down += delta.Down
	if counts.Down < 0 {
		counts.Down = 0
		clamped = append(clamped, FieldDownvoteCount)
	}
	return clamped
}
