// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"fmt"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/observability"
	"github.com/qolzam/forum/internal/pkg/log"
	usermodels "github.com/qolzam/forum/users/models"
	userrepository "github.com/qolzam/forum/users/repository"
	"github.com/qolzam/forum/votes/models"
)

// EntityUser labels clamps and drift on user reputation counters.
const EntityUser = "User"

// ReputationPropagator mirrors vote transitions onto the voter's given counters and the
// author's received counters.
type ReputationPropagator struct {
	users   userrepository.UserRepository
	metrics *observability.MetricsCollector
}

// NewReputationPropagator creates a propagator writing to users.
func NewReputationPropagator(users userrepository.UserRepository, metrics *observability.MetricsCollector) *ReputationPropagator {
	return &ReputationPropagator{users: users, metrics: metrics}
}

// ApplyVoteDelta adds (direction +1) or removes (direction -1) one vote of voteType.
func (p *ReputationPropagator) ApplyVoteDelta(ctx context.Context, voterID, authorID uuid.UUID, voteType models.VoteType, direction int64) error {
	return p.ApplyCounterDelta(ctx, voterID, authorID, models.DeltaFor(voteType, direction))
}

// ApplyCounterDelta applies delta to the voter's given and the author's received counters.
// Counters never go below zero; a clamp is logged and counted.
func (p *ReputationPropagator) ApplyCounterDelta(ctx context.Context, voterID, authorID uuid.UUID, delta models.CounterDelta) error {
	if delta.IsZero() {
		return nil
	}

	given := usermodels.ReputationDelta{UpvotesGiven: delta.Up, DownvotesGiven: delta.Down}
	update, err := p.users.IncrementReputation(ctx, voterID, given)
	if err != nil {
		return fmt.Errorf("failed to update voter reputation: %w", err)
	}
	p.recordClamps(ctx, voterID, update.Clamped)

	received := usermodels.ReputationDelta{UpvotesReceived: delta.Up, DownvotesReceived: delta.Down}
	update, err = p.users.IncrementReputation(ctx, authorID, received)
	if err != nil {
		return fmt.Errorf("failed to update author reputation: %w", err)
	}
	p.recordClamps(ctx, authorID, update.Clamped)
	return nil
}

func (p *ReputationPropagator) recordClamps(ctx context.Context, userID uuid.UUID, fields []string) {
	for _, field := range fields {
		log.WarnWithContext(ctx, "reputation counter %s of user %s clamped at zero", field, userID)
		if p.metrics != nil {
			p.metrics.RecordClamp(EntityUser, field)
		}
	}
}
