// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/votes/models"
)

// VoteRepository is the vote ledger: one record per (voter, targetType, targetId).
// Mutations are conditional so that a slot changed by a concurrent request is reported
// instead of overwritten.
type VoteRepository interface {
	// Find returns the record in the slot, or nil when the voter has not voted.
	Find(ctx context.Context, key models.VoteKey) (*models.VoteRecord, error)

	// Insert creates the record. Returns interfaces.ErrDuplicateKey when the slot is taken.
	Insert(ctx context.Context, rec *models.VoteRecord) error

	// UpdateType flips the record from one vote type to the other.
	// Returns interfaces.ErrNoDocuments when the slot no longer holds from.
	UpdateType(ctx context.Context, key models.VoteKey, from, to models.VoteType, at time.Time) error

	// Delete removes the record if it still holds expected.
	// Returns interfaces.ErrNoDocuments otherwise.
	Delete(ctx context.Context, key models.VoteKey, expected models.VoteType) error

	// FindByVoterAndTargets returns the voter's vote type per target; targets without a vote are absent.
	FindByVoterAndTargets(ctx context.Context, voter uuid.UUID, targetType models.TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]models.VoteType, error)

	// CountByTargets tallies ledger records per target. Targets without votes are absent.
	CountByTargets(ctx context.Context, targetType models.TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]models.Counts, error)

	// CountByVoter tallies the votes a voter has cast across all targets.
	CountByVoter(ctx context.Context, voter uuid.UUID) (models.Counts, error)

	// EnsureIndexes creates the unique slot index.
	EnsureIndexes(ctx context.Context) error
}
