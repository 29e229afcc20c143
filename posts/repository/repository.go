// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/posts/models"
	votemodels "github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/targets"
)

// PostRepository defines the interface for post-specific database operations.
// The votable half mirrors targets.Target's storage methods.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error

	// FindByID returns interfaces.ErrNoDocuments when missing. Soft-deleted posts are returned.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)

	// SoftDelete marks the post deleted.
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	// List returns live posts ordered by sort (models.SortHot or models.SortNew).
	List(ctx context.Context, sort string, offset, limit int) ([]models.Post, error)

	LoadSnapshot(ctx context.Context, id uuid.UUID) (*targets.Snapshot, error)
	ApplyVoteEffect(ctx context.Context, id uuid.UUID, delta votemodels.CounterDelta) (*targets.CounterUpdate, error)
	StoreScore(ctx context.Context, id uuid.UUID, score float64) error
	ResetCounts(ctx context.Context, id uuid.UUID, counts votemodels.Counts, score float64) error
	Scan(ctx context.Context, after uuid.UUID, limit int) ([]targets.Snapshot, error)
	CountsByAuthor(ctx context.Context, authorID uuid.UUID) (votemodels.Counts, error)

	EnsureIndexes(ctx context.Context) error
}
