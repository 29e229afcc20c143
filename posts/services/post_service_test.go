package services

import (
	"context"
	"strings"
	"testing"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/types"
	posterrors "github.com/qolzam/forum/posts/errors"
	"github.com/qolzam/forum/posts/models"
	"github.com/qolzam/forum/posts/repository"
	votemodels "github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(role string) types.UserContext {
	return types.UserContext{UserID: uuid.Must(uuid.NewV4()), DisplayName: "Tester", SystemRole: role}
}

func TestPostService(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryPostRepository()
	svc := NewPostService(repo)
	author := newUser(types.UserRole)

	t.Run("Create validates title", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, author, &models.CreatePostRequest{Title: "   "})
		assert.ErrorIs(t, err, posterrors.ErrInvalidPostData)

		_, err = svc.CreatePost(ctx, author, &models.CreatePostRequest{Title: strings.Repeat("x", MaxTitleLength+1)})
		assert.ErrorIs(t, err, posterrors.ErrInvalidPostData)

		_, err = svc.CreatePost(ctx, types.UserContext{}, &models.CreatePostRequest{Title: "ok"})
		assert.ErrorIs(t, err, posterrors.ErrMissingUserContext)
	})

	t.Run("Create, get and delete", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, author, &models.CreatePostRequest{Title: " Hello ", Body: "world"})
		require.NoError(t, err)
		assert.Equal(t, "Hello", post.Title)
		assert.Equal(t, author.UserID, post.AuthorID)
		assert.Zero(t, post.Score)

		got, err := svc.GetPost(ctx, post.ObjectId)
		require.NoError(t, err)
		assert.Equal(t, post.ObjectId, got.ObjectId)

		assert.ErrorIs(t, svc.DeletePost(ctx, newUser(types.UserRole), post.ObjectId), posterrors.ErrPostOwnership)
		require.NoError(t, svc.DeletePost(ctx, author, post.ObjectId))

		_, err = svc.GetPost(ctx, post.ObjectId)
		assert.ErrorIs(t, err, posterrors.ErrPostNotFound)
		assert.ErrorIs(t, svc.DeletePost(ctx, author, post.ObjectId), posterrors.ErrPostNotFound)
	})

	t.Run("Admin can delete any post", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, author, &models.CreatePostRequest{Title: "moderate me"})
		require.NoError(t, err)
		require.NoError(t, svc.DeletePost(ctx, newUser(types.AdminRole), post.ObjectId))
	})

	t.Run("Unknown post", func(t *testing.T) {
		_, err := svc.GetPost(ctx, uuid.Must(uuid.NewV4()))
		assert.ErrorIs(t, err, posterrors.ErrPostNotFound)
	})
}

func TestListPosts(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryPostRepository()
	svc := NewPostService(repo).(*postService)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	author := newUser(types.UserRole)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		post, err := svc.CreatePost(ctx, author, &models.CreatePostRequest{Title: "p"})
		require.NoError(t, err)
		ids = append(ids, post.ObjectId)
	}
	// The oldest post is the hottest.
	require.NoError(t, repo.StoreScore(ctx, ids[0], 5))

	hot, err := svc.ListPosts(ctx, &models.PostQuery{})
	require.NoError(t, err)
	require.Len(t, hot.Posts, 3)
	assert.Equal(t, ids[0], hot.Posts[0].ObjectId)
	assert.Equal(t, ids[2], hot.Posts[1].ObjectId)

	recent, err := svc.ListPosts(ctx, &models.PostQuery{Sort: models.SortNew, Limit: 2})
	require.NoError(t, err)
	require.Len(t, recent.Posts, 2)
	assert.Equal(t, ids[2], recent.Posts[0].ObjectId)
	assert.Equal(t, 2, recent.Limit)

	page2, err := svc.ListPosts(ctx, &models.PostQuery{Sort: models.SortNew, Limit: 2, Page: 2})
	require.NoError(t, err)
	require.Len(t, page2.Posts, 1)
	assert.Equal(t, ids[0], page2.Posts[0].ObjectId)

	_, err = svc.ListPosts(ctx, &models.PostQuery{Sort: "best"})
	assert.ErrorIs(t, err, posterrors.ErrInvalidSort)
}

func TestVoteTarget(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryPostRepository()
	target := NewVoteTarget(repo, ranking.Default())
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	post := &models.Post{ObjectId: uuid.Must(uuid.NewV4()), AuthorID: uuid.Must(uuid.NewV4()), CreatedAt: created}
	require.NoError(t, repo.Create(ctx, post))

	assert.Equal(t, votemodels.TargetPost, target.Kind())
	assert.Equal(t, NotificationPostUpvote, target.NotificationType())

	update, err := target.ApplyVoteEffect(ctx, post.ObjectId, votemodels.CounterDelta{Up: 1, Down: -1})
	require.NoError(t, err)
	assert.Equal(t, votemodels.Counts{Up: 1}, update.Counts)
	assert.Equal(t, []string{"downvoteCount"}, update.Clamped)

	snap, err := target.Load(ctx, post.ObjectId)
	require.NoError(t, err)
	assert.Equal(t, post.AuthorID, snap.AuthorID)
	assert.Equal(t, votemodels.Counts{Up: 1}, snap.Counts)

	score := target.Rank(votemodels.Counts{Up: 10, Down: 2}, created, created.Add(time.Hour))
	assert.InDelta(t, 1.5396, score, 1e-4)

	counts, err := target.CountsByAuthor(ctx, post.AuthorID)
	require.NoError(t, err)
	assert.Equal(t, votemodels.Counts{Up: 1}, counts)
}
