package ranking

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/qolzam/forum/internal/platform/config"
	"github.com/qolzam/forum/votes/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestHotScore_Scenario(t *testing.T) {
	created := now.Add(-time.Hour)

	score := Hot(models.Counts{Up: 10, Down: 2}, created, now)
	assert.InDelta(t, 8/math.Pow(3, 1.5), score, 1e-12)
	assert.InDelta(t, 1.5396, score, 1e-4)

	score = Hot(models.Counts{Up: 11, Down: 2}, created, now)
	assert.InDelta(t, 1.7321, score, 1e-4)
}

func TestHotScore_FutureCreatedAtCountsAsNew(t *testing.T) {
	counts := models.Counts{Up: 4}
	assert.Equal(t, Hot(counts, now, now), Hot(counts, now.Add(time.Hour), now))
}

func TestHotScore_Monotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := Default()

	for i := 0; i < 500; i++ {
		age := time.Duration(rng.Intn(24*30)) * time.Hour
		created := now.Add(-age)
		up := int64(rng.Intn(1000))
		down := int64(rng.Intn(1000))

		base := r.HotScore(models.Counts{Up: up, Down: down}, created, now)
		more := r.HotScore(models.Counts{Up: up + 1, Down: down}, created, now)
		require.Greater(t, more, base, "hot score must increase with net votes")

		if up > down {
			older := r.HotScore(models.Counts{Up: up, Down: down}, created.Add(-time.Hour), now)
			require.Less(t, older, base, "positive hot score must decay with age")
		}
	}
}

func TestBestScore(t *testing.T) {
	assert.Equal(t, 0.0, Best(models.Counts{}))
	assert.Equal(t, 1.0, Best(models.Counts{Up: 1}))

	// Same ratio with more votes ranks higher.
	few := Best(models.Counts{Up: 3, Down: 1})
	many := Best(models.Counts{Up: 300, Down: 100})
	assert.Greater(t, many, few)

	p, n := 0.75, 4.0
	assert.InDelta(t, p-1.65*math.Sqrt(p*(1-p)/n), few, 1e-12)
}

func TestBestScore_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		counts := models.Counts{Up: int64(rng.Intn(50)), Down: int64(rng.Intn(50))}
		score := Best(counts)
		require.GreaterOrEqual(t, score, -DefaultZ, "%+v", counts)
		require.LessOrEqual(t, score, 1.0, "%+v", counts)
	}
}

func TestCustomRanker(t *testing.T) {
	r := Ranker{Gravity: 1, OffsetHours: 1, Z: 0}
	assert.InDelta(t, 2.0, r.HotScore(models.Counts{Up: 6, Down: 2}, now.Add(-time.Hour), now), 1e-12)
	assert.InDelta(t, 0.5, r.BestScore(models.Counts{Up: 1, Down: 1}), 1e-12)
}

func TestFromConfig(t *testing.T) {
	r := FromConfig(config.RankingConfig{HotGravity: 1.8, HotOffsetHours: 2, BestZ: 1.96})
	assert.Equal(t, Ranker{Gravity: 1.8, OffsetHours: 2, Z: 1.96}, r)
}
