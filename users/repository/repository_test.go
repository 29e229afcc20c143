package repository

import (
	"bytes"
	"context"
	"testing"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/testutil"
	"github.com/qolzam/forum/users/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runUserContract(t *testing.T, repo UserRepository) {
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))

	t.Run("Create and find", func(t *testing.T) {
		user := &models.User{
			ObjectId:    uuid.Must(uuid.NewV4()),
			Username:    "bob",
			DisplayName: "Bob",
			CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		}
		require.NoError(t, repo.Create(ctx, user))
		assert.ErrorIs(t, repo.Create(ctx, user), interfaces.ErrDuplicateKey)

		got, err := repo.FindByID(ctx, user.ObjectId)
		require.NoError(t, err)
		assert.Equal(t, "bob", got.Username)
	})

	t.Run("Missing user", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.Must(uuid.NewV4()))
		assert.ErrorIs(t, err, interfaces.ErrNoDocuments)
	})

	t.Run("Increment creates and floors", func(t *testing.T) {
		id := uuid.Must(uuid.NewV4())

		update, err := repo.IncrementReputation(ctx, id, models.ReputationDelta{UpvotesReceived: 1, DownvotesReceived: -1})
		require.NoError(t, err)
		assert.Equal(t, []string{models.FieldDownvotesReceived}, update.Clamped)
		assert.Equal(t, int64(1), update.Reputation.UpvotesReceived)

		_, err = repo.IncrementReputation(ctx, id, models.ReputationDelta{UpvotesReceived: -1, DownvotesReceived: 1})
		require.NoError(t, err)

		got, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.Reputation{DownvotesReceived: 1}, got.Reputation)
	})

	t.Run("SetReputation overwrites", func(t *testing.T) {
		id := uuid.Must(uuid.NewV4())
		_, err := repo.IncrementReputation(ctx, id, models.ReputationDelta{UpvotesGiven: 3})
		require.NoError(t, err)

		want := models.Reputation{UpvotesGiven: 1, UpvotesReceived: 5}
		require.NoError(t, repo.SetReputation(ctx, id, want))

		got, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Reputation)
	})
}

func TestUserScan(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.User{ObjectId: uuid.Must(uuid.NewV4())}))
	}

	var seen []uuid.UUID
	after := uuid.Nil
	for {
		page, err := repo.Scan(ctx, after, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		assert.LessOrEqual(t, len(page), 2)
		for _, u := range page {
			seen = append(seen, u.ObjectId)
		}
		after = page[len(page)-1].ObjectId
	}
	assert.Len(t, seen, 5)
	for i := 1; i < len(seen); i++ {
		assert.Negative(t, bytes.Compare(seen[i-1].Bytes(), seen[i].Bytes()))
	}
}

func TestMemoryUserRepository(t *testing.T) {
	runUserContract(t, NewMemoryUserRepository())
}

func TestMongoUserRepository_Integration(t *testing.T) {
	runUserContract(t, NewMongoUserRepository(testutil.MongoClient(t)))
}
