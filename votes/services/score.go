// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/qolzam/forum/internal/database/observability"
	"github.com/qolzam/forum/internal/pkg/log"
	"github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/targets"
)

// Accumulated is the target state after a counter adjustment.
type Accumulated struct {
	Counts models.Counts
	Score  float64
}

// ScoreAccumulator adjusts a target's counters and stores a score recomputed from the
// resulting counts. Scores are never patched incrementally.
type ScoreAccumulator struct {
	metrics *observability.MetricsCollector
	now     func() time.Time
}

// NewScoreAccumulator creates an accumulator.
func NewScoreAccumulator(metrics *observability.MetricsCollector) *ScoreAccumulator {
	return &ScoreAccumulator{metrics: metrics, now: func() time.Time { return time.Now().UTC() }}
}

// Accumulate applies delta to the target described by snap.
func (a *ScoreAccumulator) Accumulate(ctx context.Context, target targets.Target, snap *targets.Snapshot, delta models.CounterDelta) (*Accumulated, error) {
	update, err := target.ApplyVoteEffect(ctx, snap.ID, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s counters: %w", target.Kind(), err)
	}
	for _, field := range update.Clamped {
		log.WarnWithContext(ctx, "%s %s counter %s clamped at zero", target.Kind(), snap.ID, field)
		if a.metrics != nil {
			a.metrics.RecordClamp(string(target.Kind()), field)
		}
	}

	score := target.Rank(update.Counts, snap.CreatedAt, a.now())
	if err := target.StoreScore(ctx, snap.ID, score); err != nil {
		return nil, fmt.Errorf("failed to store %s score: %w", target.Kind(), err)
	}
	return &Accumulated{Counts: update.Counts, Score: score}, nil
}
