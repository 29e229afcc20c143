// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/comments/models"
	"github.com/qolzam/forum/internal/database/interfaces"
	votemodels "github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/targets"
)

type memoryCommentRepository struct {
	mu       sync.RWMutex
	comments map[uuid.UUID]models.Comment
}

// NewMemoryCommentRepository creates an in-process comment store.
func NewMemoryCommentRepository() CommentRepository {
	return &memoryCommentRepository{comments: make(map[uuid.UUID]models.Comment)}
}

func snapshotOf(p models.Comment) targets.Snapshot {
	return targets.Snapshot{
		ID:        p.ObjectId,
		AuthorID:  p.AuthorID,
		Counts:    p.Counts(),
		Score:     p.Score,
		CreatedAt: p.CreatedAt,
		Deleted:   p.Deleted,
	}
}

func (r *memoryCommentRepository) Create(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.comments[comment.ObjectId]; exists {
		return interfaces.ErrDuplicateKey
	}
	r.comments[comment.ObjectId] = *comment
	return nil
}

func (r *memoryCommentRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comment, ok := r.comments[id]
	if !ok {
		return nil, interfaces.ErrNoDocuments
	}
	return &comment, nil
}

func (r *memoryCommentRepository) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok || comment.Deleted {
		return interfaces.ErrNoDocuments
	}
	comment.Deleted = true
	comment.DeletedAt = &at
	comment.UpdatedAt = at
	r.comments[id] = comment
	return nil
}

func (r *memoryCommentRepository) ListByPost(_ context.Context, postID uuid.UUID, order string, offset, limit int) ([]models.Comment, error) {
	r.mu.RLock()
	live := make([]models.Comment, 0)
	for _, c := range r.comments {
		if c.PostID == postID && !c.Deleted {
			live = append(live, c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(live, func(i, j int) bool {
		if order == models.SortNew {
			return live[i].CreatedAt.After(live[j].CreatedAt)
		}
		if live[i].Score != live[j].Score {
			return live[i].Score > live[j].Score
		}
		return live[i].CreatedAt.Before(live[j].CreatedAt)
	})

	if offset >= len(live) {
		return []models.Comment{}, nil
	}
	end := offset + limit
	if end > len(live) {
		end = len(live)
	}
	return live[offset:end], nil
}

func (r *memoryCommentRepository) LoadSnapshot(_ context.Context, id uuid.UUID) (*targets.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comment, ok := r.comments[id]
	if !ok {
		return nil, interfaces.ErrNoDocuments
	}
	snap := snapshotOf(comment)
	return &snap, nil
}

func (r *memoryCommentRepository) ApplyVoteEffect(_ context.Context, id uuid.UUID, delta votemodels.CounterDelta) (*targets.CounterUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok {
		return nil, interfaces.ErrNoDocuments
	}
	counts := comment.Counts()
	clamped := targets.ApplyFloored(&counts, delta)
	comment.UpvoteCount, comment.DownvoteCount = counts.Up, counts.Down
	comment.UpdatedAt = time.Now().UTC()
	r.comments[id] = comment
	return &targets.CounterUpdate{Counts: counts, Clamped: clamped}, nil
}

func (r *memoryCommentRepository) StoreScore(_ context.Context, id uuid.UUID, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok {
		return interfaces.ErrNoDocuments
	}
	comment.Score = score
	r.comments[id] = comment
	return nil
}

func (r *memoryCommentRepository) ResetCounts(_ context.Context, id uuid.UUID, counts votemodels.Counts, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment, ok := r.comments[id]
	if !ok {
		return interfaces.ErrNoDocuments
	}
	comment.UpvoteCount, comment.DownvoteCount, comment.Score = counts.Up, counts.Down, score
	r.comments[id] = comment
	return nil
}

func (r *memoryCommentRepository) Scan(_ context.Context, after uuid.UUID, limit int) ([]targets.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snaps := make([]targets.Snapshot, 0, limit)
	for id, p := range r.comments {
		if after == uuid.Nil || bytes.Compare(id.Bytes(), after.Bytes()) > 0 {
			snaps = append(snaps, snapshotOf(p))
		}
	}
	sort.Slice(snaps, func(i, j int) bool {
		return bytes.Compare(snaps[i].ID.Bytes(), snaps[j].ID.Bytes()) < 0
	})
	if len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

func (r *memoryCommentRepository) CountsByAuthor(_ context.Context, authorID uuid.UUID) (votemodels.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total votemodels.Counts
	for _, p := range r.comments {
		if p.AuthorID == authorID {
			total.Up += p.UpvoteCount
			total.Down += p.DownvoteCount
		}
	}
	return total, nil
}

func (r *memoryCommentRepository) EnsureIndexes(context.Context) error {
	return nil
}
