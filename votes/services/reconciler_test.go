package services

import (
	"context"
	"testing"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/qolzam/forum/internal/database/interfaces"
	usermodels "github.com/qolzam/forum/users/models"
	userrepository "github.com/qolzam/forum/users/repository"
	"github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *engine) reconciler(batchSize int, now time.Time) *Reconciler {
	r := NewReconciler(e.votes, e.users, e.registry, interfaces.NoTransaction, e.metrics, ReconcilerConfig{BatchSize: batchSize})
	r.now = func() time.Time { return now }
	return r
}

// hookedUsers runs callbacks around user reads and writes so tests can land votes mid-pass.
type hookedUsers struct {
	userrepository.UserRepository
	afterScan func()
	beforeSet func(id uuid.UUID)
}

func (u *hookedUsers) Scan(ctx context.Context, after uuid.UUID, limit int) ([]usermodels.User, error) {
	batch, err := u.UserRepository.Scan(ctx, after, limit)
	if u.afterScan != nil {
		u.afterScan()
		u.afterScan = nil
	}
	return batch, err
}

func (u *hookedUsers) SetReputation(ctx context.Context, id uuid.UUID, rep usermodels.Reputation) error {
	if u.beforeSet != nil {
		u.beforeSet(id)
	}
	return u.UserRepository.SetReputation(ctx, id, rep)
}

func TestReconcileAllRepairsDrift(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	author, alice, bob := newID(), newID(), newID()
	post := e.newPost(t, author, fixedNow)
	comment := e.newComment(t, author)

	e.vote(t, alice, models.TargetPost, post, models.VoteUp)
	e.vote(t, bob, models.TargetPost, post, models.VoteDown)
	e.vote(t, alice, models.TargetComment, comment, models.VoteUp)

	require.NoError(t, e.posts.ResetCounts(ctx, post, models.Counts{Up: 5, Down: 5}, 0))
	require.NoError(t, e.users.SetReputation(ctx, author, usermodels.Reputation{}))

	report, err := e.reconciler(1, fixedNow).ReconcileAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TargetsScanned)
	assert.Equal(t, 1, report.TargetsRepaired)
	assert.Equal(t, 0, report.ScoresRefreshed)
	assert.Equal(t, 3, report.UsersScanned)
	assert.Equal(t, 1, report.UsersRepaired)

	assert.Equal(t, models.Counts{Up: 1, Down: 1}, e.counts(t, models.TargetPost, post))
	assert.Equal(t, usermodels.Reputation{UpvotesReceived: 2, DownvotesReceived: 1}, e.reputation(t, author))
	assert.Equal(t, usermodels.Reputation{UpvotesGiven: 2}, e.reputation(t, alice))

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ReconcileDrift.WithLabelValues("Post", "upvoteCount")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ReconcileDrift.WithLabelValues("Post", "downvoteCount")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ReconcileDrift.WithLabelValues(EntityUser, usermodels.FieldUpvotesReceived)))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ReconcileDrift.WithLabelValues(EntityUser, usermodels.FieldDownvotesReceived)))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ReconcileRuns.WithLabelValues(ResultOK)))

	// A second pass finds nothing to do.
	report, err = e.reconciler(1, fixedNow).ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.TargetsRepaired)
	assert.Zero(t, report.UsersRepaired)
}

func TestReconcileRebuildsFromLedgerOnly(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	author, voter := newID(), newID()
	post := e.newPost(t, author, fixedNow.Add(-time.Hour))

	// Ledger written without counters or reputation, as after a crash between writes.
	require.NoError(t, e.votes.Insert(ctx, &models.VoteRecord{
		ObjectId: newID(), Voter: voter, TargetType: models.TargetPost, TargetID: post,
		VoteType: models.VoteUp, CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}))

	report, err := e.reconciler(10, fixedNow).ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TargetsRepaired)

	stored, err := e.posts.FindByID(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, models.Counts{Up: 1}, stored.Counts())
	assert.Equal(t, ranking.Hot(models.Counts{Up: 1}, stored.CreatedAt, fixedNow), stored.Score)
	// The author has no user document yet and still gets the received vote.
	assert.Equal(t, usermodels.Reputation{UpvotesReceived: 1}, e.reputation(t, author))
}

func TestReconcileRefreshesDecayedHotScores(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	post := e.newPost(t, newID(), fixedNow)
	comment := e.newComment(t, newID())
	e.vote(t, newID(), models.TargetPost, post, models.VoteUp)
	e.vote(t, newID(), models.TargetComment, comment, models.VoteUp)

	later := fixedNow.Add(10 * time.Hour)
	report, err := e.reconciler(10, later).ReconcileAll(ctx)
	require.NoError(t, err)

	// Best ignores age, so only the post moves.
	assert.Equal(t, 1, report.ScoresRefreshed)
	assert.Zero(t, report.TargetsRepaired)
	stored, err := e.posts.FindByID(ctx, post)
	require.NoError(t, err)
	assert.InDelta(t, ranking.Hot(models.Counts{Up: 1}, fixedNow, later), stored.Score, 1e-12)
	assert.Less(t, stored.Score, ranking.Hot(models.Counts{Up: 1}, fixedNow, fixedNow))
}

func TestReconcileTargetUnknownKind(t *testing.T) {
	e := newEngine(t)
	_, err := e.reconciler(10, fixedNow).ReconcileTarget(context.Background(), models.TargetType("Story"), uuid.Must(uuid.NewV4()))
	assert.Error(t, err)
}

func TestReconcileAllStopsOnCancelledContext(t *testing.T) {
	e := newEngine(t)
	e.newPost(t, newID(), fixedNow)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.reconciler(10, fixedNow).ReconcileAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ReconcileRuns.WithLabelValues(ResultError)))
}

func TestReconcilerStart(t *testing.T) {
	e := newEngine(t)
	r := NewReconciler(e.votes, e.users, e.registry, nil, e.metrics, ReconcilerConfig{Interval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(e.metrics.ReconcileRuns.WithLabelValues(ResultOK)) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}

func TestReconcileUserRepairKeepsConcurrentVote(t *testing.T) {
	tx := interfaces.Serialized()
	e := newEngineWithTx(t, tx)
	ctx := context.Background()
	author, alice, bob := newID(), newID(), newID()
	post := e.newPost(t, author, fixedNow)
	e.vote(t, alice, models.TargetPost, post, models.VoteUp)
	require.NoError(t, e.users.SetReputation(ctx, author, usermodels.Reputation{}))

	voted := make(chan error, 1)
	users := &hookedUsers{UserRepository: e.users}
	users.beforeSet = func(id uuid.UUID) {
		if id != author {
			return
		}
		users.beforeSet = nil
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := e.svc.Vote(context.Background(), bob, &models.VoteRequest{
				TargetType: string(models.TargetPost), TargetID: post.String(), VoteType: string(models.VoteUp),
			})
			voted <- err
		}()
		// The vote must wait for the repair to commit.
		select {
		case <-done:
		case <-time.After(50 * time.Millisecond):
		}
	}

	r := NewReconciler(e.votes, users, e.registry, tx, e.metrics, ReconcilerConfig{BatchSize: 10})
	r.now = func() time.Time { return fixedNow }
	report, err := r.ReconcileAll(ctx)
	require.NoError(t, err)
	require.NoError(t, <-voted)

	assert.Equal(t, 1, report.UsersRepaired)
	assert.Equal(t, models.Counts{Up: 2}, e.counts(t, models.TargetPost, post))
	assert.Equal(t, usermodels.Reputation{UpvotesReceived: 2}, e.reputation(t, author))
	assert.Equal(t, usermodels.Reputation{UpvotesGiven: 1}, e.reputation(t, bob))
}

func TestReconcileUserRereadsAfterScan(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	author, alice, bob := newID(), newID(), newID()
	post := e.newPost(t, author, fixedNow)
	e.vote(t, alice, models.TargetPost, post, models.VoteUp)

	users := &hookedUsers{UserRepository: e.users}
	users.afterScan = func() {
		e.vote(t, bob, models.TargetPost, post, models.VoteUp)
	}

	r := NewReconciler(e.votes, users, e.registry, interfaces.NoTransaction, e.metrics, ReconcilerConfig{BatchSize: 10})
	r.now = func() time.Time { return fixedNow }
	report, err := r.ReconcileAll(ctx)
	require.NoError(t, err)

	// The scanned copy is stale but the stored reputation is correct.
	assert.Zero(t, report.UsersRepaired)
	assert.Zero(t, testutil.ToFloat64(e.metrics.ReconcileDrift.WithLabelValues(EntityUser, usermodels.FieldUpvotesReceived)))
	assert.Equal(t, usermodels.Reputation{UpvotesReceived: 2}, e.reputation(t, author))
}
