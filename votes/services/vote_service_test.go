// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/database/observability"
	userrepository "github.com/qolzam/forum/users/repository"
	voteerrors "github.com/qolzam/forum/votes/errors"
	"github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/targets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockedService struct {
	svc     VoteService
	votes   *MockVoteRepository
	target  *MockTarget
	users   userrepository.UserRepository
	metrics *observability.MetricsCollector
	txCalls int
}

func newMockedService() *mockedService {
	m := &mockedService{
		votes:   new(MockVoteRepository),
		target:  NewMockTarget(models.TargetPost),
		users:   userrepository.NewMemoryUserRepository(),
		metrics: observability.NewMetricsCollector(prometheus.NewRegistry()),
	}
	tx := interfaces.TxFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
		m.txCalls++
		return fn(ctx)
	})
	m.svc = NewVoteService(Dependencies{
		Votes:      m.votes,
		Targets:    targets.NewRegistry(m.target),
		Tx:         tx,
		Scores:     NewScoreAccumulator(m.metrics),
		Reputation: NewReputationPropagator(m.users, m.metrics),
		Metrics:    m.metrics,
	})
	return m
}

func postRequest(id uuid.UUID, voteType string) *models.VoteRequest {
	return &models.VoteRequest{TargetType: "Post", TargetID: id.String(), VoteType: voteType}
}

func TestVoteService_Validation(t *testing.T) {
	ctx := context.Background()
	voter := uuid.Must(uuid.NewV4())
	postID := uuid.Must(uuid.NewV4())

	cases := []struct {
		name  string
		voter uuid.UUID
		req   *models.VoteRequest
		code  string
	}{
		{"Unknown target type", voter, &models.VoteRequest{TargetType: "Story", TargetID: postID.String(), VoteType: "upvote"}, voteerrors.CodeInvalidTargetType},
		{"Unregistered target type", voter, &models.VoteRequest{TargetType: "comment", TargetID: postID.String(), VoteType: "upvote"}, voteerrors.CodeInvalidTargetType},
		{"Malformed target id", voter, &models.VoteRequest{TargetType: "Post", TargetID: "nope", VoteType: "upvote"}, voteerrors.CodeInvalidUUID},
		{"Unknown vote type", voter, postRequest(postID, "sideways"), voteerrors.CodeInvalidVoteType},
		{"Missing voter", uuid.Nil, postRequest(postID, "upvote"), voteerrors.CodeValidationFailed},
		{"Missing body", voter, nil, voteerrors.CodeInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMockedService()
			_, err := m.svc.Vote(ctx, tc.voter, tc.req)
			require.ErrorIs(t, err, voteerrors.ErrValidation)

			var voteErr *voteerrors.VoteError
			require.ErrorAs(t, err, &voteErr)
			assert.Equal(t, tc.code, voteErr.Code)

			// Rejected before any storage access.
			assert.Zero(t, m.txCalls)
			m.votes.AssertExpectations(t)
			m.target.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
		})
	}
}

func TestVoteService_Preconditions(t *testing.T) {
	ctx := context.Background()
	voter := uuid.Must(uuid.NewV4())
	postID := uuid.Must(uuid.NewV4())

	t.Run("Missing target", func(t *testing.T) {
		m := newMockedService()
		m.target.On("Load", mock.Anything, postID).Return(nil, interfaces.ErrNoDocuments)

		_, err := m.svc.Vote(ctx, voter, postRequest(postID, "upvote"))
		assert.ErrorIs(t, err, voteerrors.ErrNotFound)
		m.votes.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
	})

	t.Run("Soft-deleted target", func(t *testing.T) {
		m := newMockedService()
		m.target.On("Load", mock.Anything, postID).Return(&targets.Snapshot{ID: postID, AuthorID: uuid.Must(uuid.NewV4()), Deleted: true}, nil)

		_, err := m.svc.Vote(ctx, voter, postRequest(postID, "upvote"))
		assert.ErrorIs(t, err, voteerrors.ErrNotFound)
		m.votes.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
	})

	t.Run("Self vote", func(t *testing.T) {
		m := newMockedService()
		m.target.On("Load", mock.Anything, postID).Return(&targets.Snapshot{ID: postID, AuthorID: voter}, nil)

		_, err := m.svc.Vote(ctx, voter, postRequest(postID, "downvote"))
		assert.ErrorIs(t, err, voteerrors.ErrSelfVote)
		m.votes.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
		m.target.AssertNotCalled(t, "ApplyVoteEffect", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVoteService_Transitions(t *testing.T) {
	ctx := context.Background()
	voter := uuid.Must(uuid.NewV4())
	author := uuid.Must(uuid.NewV4())
	postID := uuid.Must(uuid.NewV4())
	key := models.VoteKey{Voter: voter, TargetType: models.TargetPost, TargetID: postID}
	snap := &targets.Snapshot{ID: postID, AuthorID: author, Counts: models.Counts{Up: 3, Down: 1}}

	t.Run("New Vote - Up", func(t *testing.T) {
		m := newMockedService()
		m.target.On("Load", mock.Anything, postID).Return(snap, nil)
		m.votes.On("Find", mock.Anything, key).Return(nil, nil)
		m.votes.On("Insert", mock.Anything, mock.MatchedBy(func(rec *models.VoteRecord) bool {
			return rec.Key() == key && rec.VoteType == models.VoteUp && rec.ObjectId != uuid.Nil
		})).Return(nil)
		m.target.On("ApplyVoteEffect", mock.Anything, postID, models.CounterDelta{Up: 1}).
			Return(&targets.CounterUpdate{Counts: models.Counts{Up: 4, Down: 1}}, nil)
		m.target.On("StoreScore", mock.Anything, postID, 3.0).Return(nil)

		result, err := m.svc.Vote(ctx, voter, postRequest(postID, "upvote"))
		require.NoError(t, err)
		assert.Equal(t, &models.VoteResult{UpvoteCount: 4, DownvoteCount: 1, Score: 3, UserVote: models.StateUpvoted}, result)
		assert.Equal(t, 1, m.txCalls)
		m.votes.AssertExpectations(t)
		m.target.AssertExpectations(t)

		voterDoc, err := m.users.FindByID(ctx, voter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), voterDoc.Reputation.UpvotesGiven)
		authorDoc, err := m.users.FindByID(ctx, author)
		require.NoError(t, err)
		assert.Equal(t, int64(1), authorDoc.Reputation.UpvotesReceived)
		assert.Equal(t, 1.0, promtestutil.ToFloat64(m.metrics.Votes.WithLabelValues("Post", "create")))
	})

	t.Run("Toggle Off - Down vote", func(t *testing.T) {
		m := newMockedService()
		m.target.On("Load", mock.Anything, postID).Return(snap, nil)
		m.votes.On("Find", mock.Anything, key).Return(&models.VoteRecord{Voter: voter, TargetType: models.TargetPost, TargetID: postID, VoteType: models.VoteDown}, nil)
		m.votes.On("Delete", mock.Anything, key, models.VoteDown).Return(nil)
		m.target.On("ApplyVoteEffect", mock.Anything, postID, models.CounterDelta{Down: -1}).
			Return(&targets.CounterUpdate{Counts: models.Counts{Up: 3}}, nil)
		m.target.On("StoreScore", mock.Anything, postID, 3.0).Return(nil)

		result, err := m.svc.Vote(ctx, voter, postRequest(postID, "downvote"))
		require.NoError(t, err)
		assert.Equal(t, models.StateNoVote, result.UserVote)
		m.votes.AssertExpectations(t)
	})

	t.Run("Switch Vote - Up to Down", func(t *testing.T) {
		m := newMockedService()
		m.target.On("Load", mock.Anything, postID).Return(snap, nil)
		m.votes.On("Find", mock.Anything, key).Return(&models.VoteRecord{Voter: voter, TargetType: models.TargetPost, TargetID: postID, VoteType: models.VoteUp}, nil)
		m.votes.On("UpdateType", mock.Anything, key, models.VoteUp, models.VoteDown, mock.AnythingOfType("time.Time")).Return(nil)
		m.target.On("ApplyVoteEffect", mock.Anything, postID, models.CounterDelta{Up: -1, Down: 1}).
			Return(&targets.CounterUpdate{Counts: models.Counts{Up: 2, Down: 2}}, nil)
		m.target.On("StoreScore", mock.Anything, postID, 0.0).Return(nil)

		result, err := m.svc.Vote(ctx, voter, postRequest(postID, "DOWNVOTE"))
		require.NoError(t, err)
		assert.Equal(t, models.StateDownvoted, result.UserVote)
		assert.Equal(t, int64(2), result.DownvoteCount)
		m.target.AssertExpectations(t)
	})
}

func TestVoteService_LedgerConflicts(t *testing.T) {
	ctx := context.Background()
	voter := uuid.Must(uuid.NewV4())
	postID := uuid.Must(uuid.NewV4())
	key := models.VoteKey{Voter: voter, TargetType: models.TargetPost, TargetID: postID}
	snap := &targets.Snapshot{ID: postID, AuthorID: uuid.Must(uuid.NewV4())}

	t.Run("Concurrent create", func(t *testing.T) {
		m := newMockedService()
		m.target.On("Load", mock.Anything, postID).Return(snap, nil)
		m.votes.On("Find", mock.Anything, key).Return(nil, nil)
		m.votes.On("Insert", mock.Anything, mock.Anything).Return(interfaces.ErrDuplicateKey)

		_, err := m.svc.Vote(ctx, voter, postRequest(postID, "upvote"))
		assert.ErrorIs(t, err, voteerrors.ErrConflict)
		m.target.AssertNotCalled(t, "ApplyVoteEffect", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Slot changed before flip", func(t *testing.T) {
		m := newMockedService()
		m.target.On("Load", mock.Anything, postID).Return(snap, nil)
		m.votes.On("Find", mock.Anything, key).Return(&models.VoteRecord{VoteType: models.VoteUp}, nil)
		m.votes.On("UpdateType", mock.Anything, key, models.VoteUp, models.VoteDown, mock.Anything).Return(interfaces.ErrNoDocuments)

		_, err := m.svc.Vote(ctx, voter, postRequest(postID, "downvote"))
		assert.ErrorIs(t, err, voteerrors.ErrConflict)
		m.target.AssertNotCalled(t, "ApplyVoteEffect", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Transaction write conflict", func(t *testing.T) {
		m := newMockedService()
		m.svc.(*voteService).Tx = interfaces.TxFunc(func(context.Context, func(context.Context) error) error {
			return interfaces.ErrTransactionConflict
		})

		_, err := m.svc.Vote(ctx, voter, postRequest(postID, "upvote"))
		assert.ErrorIs(t, err, voteerrors.ErrConflict)
	})

	t.Run("Storage unavailable", func(t *testing.T) {
		m := newMockedService()
		m.target.On("Load", mock.Anything, postID).Return(snap, nil)
		m.votes.On("Find", mock.Anything, key).Return(nil, errors.New("socket closed"))

		_, err := m.svc.Vote(ctx, voter, postRequest(postID, "upvote"))
		assert.ErrorIs(t, err, voteerrors.ErrDependency)
		assert.Equal(t, voteerrors.KindDependency, voteerrors.KindOf(err))
	})
}

func TestScoreAccumulator_RecordsClamps(t *testing.T) {
	ctx := context.Background()
	metrics := observability.NewMetricsCollector(prometheus.NewRegistry())
	acc := NewScoreAccumulator(metrics)
	acc.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	target := NewMockTarget(models.TargetComment)
	id := uuid.Must(uuid.NewV4())
	target.On("ApplyVoteEffect", ctx, id, models.CounterDelta{Down: -1}).
		Return(&targets.CounterUpdate{Counts: models.Counts{Up: 2}, Clamped: []string{targets.FieldDownvoteCount}}, nil)
	target.On("StoreScore", ctx, id, 2.0).Return(nil)

	got, err := acc.Accumulate(ctx, target, &targets.Snapshot{ID: id}, models.CounterDelta{Down: -1})
	require.NoError(t, err)
	assert.Equal(t, &Accumulated{Counts: models.Counts{Up: 2}, Score: 2}, got)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.FloorClamps.WithLabelValues("Comment", "downvoteCount")))
}

func TestReputationPropagator(t *testing.T) {
	ctx := context.Background()
	metrics := observability.NewMetricsCollector(prometheus.NewRegistry())
	users := userrepository.NewMemoryUserRepository()
	p := NewReputationPropagator(users, metrics)
	voter, author := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	require.NoError(t, p.ApplyVoteDelta(ctx, voter, author, models.VoteDown, 1))
	require.NoError(t, p.ApplyVoteDelta(ctx, voter, author, models.VoteUp, -1))

	v, err := users.FindByID(ctx, voter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Reputation.DownvotesGiven)
	assert.Zero(t, v.Reputation.UpvotesGiven)

	a, err := users.FindByID(ctx, author)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.Reputation.DownvotesReceived)
	assert.Equal(t, int64(-1), a.Reputation.Karma())

	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.FloorClamps.WithLabelValues(EntityUser, "reputation.upvotesGiven")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.FloorClamps.WithLabelValues(EntityUser, "reputation.upvotesReceived")))

	assert.NoError(t, p.ApplyCounterDelta(ctx, voter, author, models.CounterDelta{}))
}
