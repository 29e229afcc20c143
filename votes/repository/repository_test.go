package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/testutil"
	"github.com/qolzam/forum/votes/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

func newRecord(voter uuid.UUID, tt models.TargetType, target uuid.UUID, v models.VoteType) *models.VoteRecord {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.VoteRecord{
		ObjectId:   newID(),
		Voter:      voter,
		TargetType: tt,
		TargetID:   target,
		VoteType:   v,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// runLedgerContract exercises behaviour every VoteRepository must share.
func runLedgerContract(t *testing.T, repo VoteRepository) {
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))

	t.Run("Find on empty slot returns nil", func(t *testing.T) {
		rec, err := repo.Find(ctx, models.VoteKey{Voter: newID(), TargetType: models.TargetPost, TargetID: newID()})
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("Insert then find", func(t *testing.T) {
		rec := newRecord(newID(), models.TargetPost, newID(), models.VoteUp)
		require.NoError(t, repo.Insert(ctx, rec))

		got, err := repo.Find(ctx, rec.Key())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.VoteUp, got.VoteType)
		assert.Equal(t, rec.ObjectId, got.ObjectId)
	})

	t.Run("Duplicate slot is rejected", func(t *testing.T) {
		rec := newRecord(newID(), models.TargetComment, newID(), models.VoteUp)
		require.NoError(t, repo.Insert(ctx, rec))

		dup := newRecord(rec.Voter, rec.TargetType, rec.TargetID, models.VoteDown)
		assert.ErrorIs(t, repo.Insert(ctx, dup), interfaces.ErrDuplicateKey)
	})

	t.Run("Same target id under another kind is a different slot", func(t *testing.T) {
		voter, target := newID(), newID()
		require.NoError(t, repo.Insert(ctx, newRecord(voter, models.TargetPost, target, models.VoteUp)))
		require.NoError(t, repo.Insert(ctx, newRecord(voter, models.TargetComment, target, models.VoteUp)))
	})

	t.Run("UpdateType is conditional", func(t *testing.T) {
		rec := newRecord(newID(), models.TargetPost, newID(), models.VoteUp)
		require.NoError(t, repo.Insert(ctx, rec))

		assert.ErrorIs(t, repo.UpdateType(ctx, rec.Key(), models.VoteDown, models.VoteUp, time.Now()), interfaces.ErrNoDocuments)
		require.NoError(t, repo.UpdateType(ctx, rec.Key(), models.VoteUp, models.VoteDown, time.Now()))

		got, err := repo.Find(ctx, rec.Key())
		require.NoError(t, err)
		assert.Equal(t, models.VoteDown, got.VoteType)
	})

	t.Run("Delete is conditional", func(t *testing.T) {
		rec := newRecord(newID(), models.TargetPost, newID(), models.VoteDown)
		require.NoError(t, repo.Insert(ctx, rec))

		assert.ErrorIs(t, repo.Delete(ctx, rec.Key(), models.VoteUp), interfaces.ErrNoDocuments)
		require.NoError(t, repo.Delete(ctx, rec.Key(), models.VoteDown))
		assert.ErrorIs(t, repo.Delete(ctx, rec.Key(), models.VoteDown), interfaces.ErrNoDocuments)

		got, err := repo.Find(ctx, rec.Key())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Counts and bulk lookup", func(t *testing.T) {
		voter := newID()
		a, b, untouched := newID(), newID(), newID()
		require.NoError(t, repo.Insert(ctx, newRecord(voter, models.TargetPost, a, models.VoteUp)))
		require.NoError(t, repo.Insert(ctx, newRecord(newID(), models.TargetPost, a, models.VoteUp)))
		require.NoError(t, repo.Insert(ctx, newRecord(newID(), models.TargetPost, a, models.VoteDown)))
		require.NoError(t, repo.Insert(ctx, newRecord(voter, models.TargetPost, b, models.VoteDown)))

		counts, err := repo.CountByTargets(ctx, models.TargetPost, []uuid.UUID{a, b, untouched})
		require.NoError(t, err)
		assert.Equal(t, models.Counts{Up: 2, Down: 1}, counts[a])
		assert.Equal(t, models.Counts{Down: 1}, counts[b])
		_, present := counts[untouched]
		assert.False(t, present)

		votes, err := repo.FindByVoterAndTargets(ctx, voter, models.TargetPost, []uuid.UUID{a, b, untouched})
		require.NoError(t, err)
		assert.Equal(t, map[uuid.UUID]models.VoteType{a: models.VoteUp, b: models.VoteDown}, votes)

		given, err := repo.CountByVoter(ctx, voter)
		require.NoError(t, err)
		assert.Equal(t, models.Counts{Up: 1, Down: 1}, given)
	})

	t.Run("Concurrent inserts on one slot leave one record", func(t *testing.T) {
		voter, target := newID(), newID()
		var wg sync.WaitGroup
		var ok int32
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if repo.Insert(ctx, newRecord(voter, models.TargetPost, target, models.VoteUp)) == nil {
					atomic.AddInt32(&ok, 1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), ok)

		counts, err := repo.CountByTargets(ctx, models.TargetPost, []uuid.UUID{target})
		require.NoError(t, err)
		assert.Equal(t, models.Counts{Up: 1}, counts[target])
	})
}

func TestMemoryVoteRepository(t *testing.T) {
	runLedgerContract(t, NewMemoryVoteRepository())
}

func TestMongoVoteRepository_Integration(t *testing.T) {
	client := testutil.MongoClient(t)
	runLedgerContract(t, NewMongoVoteRepository(client))
}
