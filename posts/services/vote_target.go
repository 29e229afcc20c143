// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/posts/repository"
	votemodels "github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/ranking"
	"github.com/qolzam/forum/votes/targets"
)

// NotificationPostUpvote is sent to a post's author on a new upvote.
const NotificationPostUpvote = "post_upvote"

// voteTarget exposes posts to the vote engine. Posts rank by time-decayed hot score.
type voteTarget struct {
	repo   repository.PostRepository
	ranker ranking.Ranker
}

// NewVoteTarget adapts the post repository to targets.Target.
func NewVoteTarget(repo repository.PostRepository, ranker ranking.Ranker) targets.Target {
	return &voteTarget{repo: repo, ranker: ranker}
}

func (t *voteTarget) Kind() votemodels.TargetType {
	return votemodels.TargetPost
}

func (t *voteTarget) Load(ctx context.Context, id uuid.UUID) (*targets.Snapshot, error) {
	return t.repo.LoadSnapshot(ctx, id)
}

func (t *voteTarget) ApplyVoteEffect(ctx context.Context, id uuid.UUID, delta votemodels.CounterDelta) (*targets.CounterUpdate, error) {
	return t.repo.ApplyVoteEffect(ctx, id, delta)
}

func (t *voteTarget) StoreScore(ctx context.Context, id uuid.UUID, score float64) error {
	return t.repo.StoreScore(ctx, id, score)
}

func (t *voteTarget) ResetCounts(ctx context.Context, id uuid.UUID, counts votemodels.Counts, score float64) error {
	return t.repo.ResetCounts(ctx, id, counts, score)
}

func (t *voteTarget) Scan(ctx context.Context, after uuid.UUID, limit int) ([]targets.Snapshot, error) {
	return t.repo.Scan(ctx, after, limit)
}

func (t *voteTarget) CountsByAuthor(ctx context.Context, authorID uuid.UUID) (votemodels.Counts, error) {
	return t.repo.CountsByAuthor(ctx, authorID)
}

func (t *voteTarget) Rank(counts votemodels.Counts, createdAt, now time.Time) float64 {
	return t.ranker.HotScore(counts, createdAt, now)
}

func (t *voteTarget) NotificationType() string {
	return NotificationPostUpvote
}
