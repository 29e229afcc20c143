// Package ranking holds the pure scoring functions used to sort posts and comments.
// Scores are always recomputed from the counters, never patched incrementally.
package ranking

import (
	"math"
	"time"

	"github.com/qolzam/forum/internal/platform/config"
	"github.com/qolzam/forum/votes/models"
)

// Default constants of the hot and best score functions.
const (
	DefaultGravity     = 1.5
	DefaultOffsetHours = 2.0
	DefaultZ           = 1.65
)

// Ranker computes hot scores for posts and lower-confidence-bound scores for comments.
type Ranker struct {
	// Gravity is the exponent of the age penalty.
	Gravity float64
	// OffsetHours is added to the age so new posts do not divide by ~0.
	OffsetHours float64
	// Z is the confidence multiplier of the best score.
	Z float64
}

// Default returns a Ranker with the standard constants.
func Default() Ranker {
	return Ranker{Gravity: DefaultGravity, OffsetHours: DefaultOffsetHours, Z: DefaultZ}
}

// FromConfig returns a Ranker with the configured constants.
func FromConfig(cfg config.RankingConfig) Ranker {
	return Ranker{Gravity: cfg.HotGravity, OffsetHours: cfg.HotOffsetHours, Z: cfg.BestZ}
}

// HotScore returns net / (ageHours + offset)^gravity. A createdAt in the future counts as age 0.
func (r Ranker) HotScore(counts models.Counts, createdAt, now time.Time) float64 {
	ageHours := now.Sub(createdAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return float64(counts.Net()) / math.Pow(ageHours+r.OffsetHours, r.Gravity)
}

// BestScore returns p - z*sqrt(p(1-p)/n) over the upvote proportion p of n votes, or 0 without votes.
func (r Ranker) BestScore(counts models.Counts) float64 {
	n := float64(counts.Total())
	if n <= 0 {
		return 0
	}
	p := float64(counts.Up) / n
	return p - r.Z*math.Sqrt(p*(1-p)/n)
}

// Hot is HotScore with the default constants.
func Hot(counts models.Counts, createdAt, now time.Time) float64 {
	return Default().HotScore(counts, createdAt, now)
}

// Best is BestScore with the default constants.
func Best(counts models.Counts) float64 {
	return Default().BestScore(counts)
}
