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
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/posts/models"
	votemodels "github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/targets"
)

type memoryPostRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]models.Post
}

// NewMemoryPostRepository creates an in-process post store.
func NewMemoryPostRepository() PostRepository {
	return &memoryPostRepository{posts: make(map[uuid.UUID]models.Post)}
}

func snapshotOf(p models.Post) targets.Snapshot {
	return targets.Snapshot{
		ID:        p.ObjectId,
		AuthorID:  p.AuthorID,
		Counts:    p.Counts(),
		Score:     p.Score,
		CreatedAt: p.CreatedAt,
		Deleted:   p.Deleted,
	}
}

func (r *memoryPostRepository) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.posts[post.ObjectId]; exists {
		return interfaces.ErrDuplicateKey
	}
	r.posts[post.ObjectId] = *post
	return nil
}

func (r *memoryPostRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, interfaces.ErrNoDocuments
	}
	return &post, nil
}

func (r *memoryPostRepository) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok || post.Deleted {
		return interfaces.ErrNoDocuments
	}
	post.Deleted = true
	post.DeletedAt = &at
	post.UpdatedAt = at
	r.posts[id] = post
	return nil
}

func (r *memoryPostRepository) List(_ context.Context, order string, offset, limit int) ([]models.Post, error) {
	r.mu.RLock()
	live := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if !p.Deleted {
			live = append(live, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(live, func(i, j int) bool {
		if order != models.SortNew && live[i].Score != live[j].Score {
			return live[i].Score > live[j].Score
		}
		return live[i].CreatedAt.After(live[j].CreatedAt)
	})

	if offset >= len(live) {
		return []models.Post{}, nil
	}
	end := offset + limit
	if end > len(live) {
		end = len(live)
	}
	return live[offset:end], nil
}

func (r *memoryPostRepository) LoadSnapshot(_ context.Context, id uuid.UUID) (*targets.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, interfaces.ErrNoDocuments
	}
	snap := snapshotOf(post)
	return &snap, nil
}

func (r *memoryPostRepository) ApplyVoteEffect(_ context.Context, id uuid.UUID, delta votemodels.CounterDelta) (*targets.CounterUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, interfaces.ErrNoDocuments
	}
	counts := post.Counts()
	clamped := targets.ApplyFloored(&counts, delta)
	post.UpvoteCount, post.DownvoteCount = counts.Up, counts.Down
	post.UpdatedAt = time.Now().UTC()
	r.posts[id] = post
	return &targets.CounterUpdate{Counts: counts, Clamped: clamped}, nil
}

func (r *memoryPostRepository) StoreScore(_ context.Context, id uuid.UUID, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return interfaces.ErrNoDocuments
	}
	post.Score = score
	r.posts[id] = post
	return nil
}

func (r *memoryPostRepository) ResetCounts(_ context.Context, id uuid.UUID, counts votemodels.Counts, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return interfaces.ErrNoDocuments
	}
	post.UpvoteCount, post.DownvoteCount, post.Score = counts.Up, counts.Down, score
	r.posts[id] = post
	return nil
}

func (r *memoryPostRepository) Scan(_ context.Context, after uuid.UUID, limit int) ([]targets.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snaps := make([]targets.Snapshot, 0, limit)
	for id, p := range r.posts {
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

func (r *memoryPostRepository) CountsByAuthor(_ context.Context, authorID uuid.UUID) (votemodels.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total votemodels.Counts
	for _, p := range r.posts {
		if p.AuthorID == authorID {
			total.Up += p.UpvoteCount
			total.Down += p.DownvoteCount
		}
	}
	return total, nil
}

func (r *memoryPostRepository) EnsureIndexes(context.Context) error {
	return nil
}
