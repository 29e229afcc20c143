// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/comments/models"
	votemodels "github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/targets"
)

// CommentRepository defines the interface for comment-specific database operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error

	// FindByID returns interfaces.ErrNoDocuments when missing. Soft-deleted comments are returned.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)

	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	// ListByPost returns the live comments of a post ordered by sort (models.SortBest or models.SortNew).
	ListByPost(ctx context.Context, postID uuid.UUID, sort string, offset, limit int) ([]models.Comment, error)

	LoadSnapshot(ctx context.Context, id uuid.UUID) (*targets.Snapshot, error)
	ApplyVoteEffect(ctx context.Context, id uuid.UUID, delta votemodels.CounterDelta) (*targets.CounterUpdate, error)
	StoreScore(ctx context.Context, id uuid.UUID, score float64) error
	ResetCounts(ctx context.Context, id uuid.UUID, counts votemodels.Counts, score float64) error
	Scan(ctx context.Context, after uuid.UUID, limit int) ([]targets.Snapshot, error)
	CountsByAuthor(ctx context.Context, authorID uuid.UUID) (votemodels.Counts, error)

	EnsureIndexes(ctx context.Context) error
}
