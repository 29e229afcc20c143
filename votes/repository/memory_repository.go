// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"sync"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/votes/models"
)

type memoryVoteRepository struct {
	mu      sync.RWMutex
	records map[models.VoteKey]models.VoteRecord
}

// NewMemoryVoteRepository creates an in-process ledger with the same conditional write
// semantics as the MongoDB one.
func NewMemoryVoteRepository() VoteRepository {
	return &memoryVoteRepository{records: make(map[models.VoteKey]models.VoteRecord)}
}

func (r *memoryVoteRepository) Find(_ context.Context, key models.VoteKey) (*models.VoteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memoryVoteRepository) Insert(_ context.Context, rec *models.VoteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rec.Key()
	if _, exists := r.records[key]; exists {
		return interfaces.ErrDuplicateKey
	}
	r.records[key] = *rec
	return nil
}

func (r *memoryVoteRepository) UpdateType(_ context.Context, key models.VoteKey, from, to models.VoteType, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok || rec.VoteType != from {
		return interfaces.ErrNoDocuments
	}
	rec.VoteType = to
	rec.UpdatedAt = at
	r.records[key] = rec
	return nil
}

func (r *memoryVoteRepository) Delete(_ context.Context, key models.VoteKey, expected models.VoteType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok || rec.VoteType != expected {
		return interfaces.ErrNoDocuments
	}
	delete(r.records, key)
	return nil
}

func (r *memoryVoteRepository) FindByVoterAndTargets(_ context.Context, voter uuid.UUID, targetType models.TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]models.VoteType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[uuid.UUID]models.VoteType, len(targetIDs))
	for _, id := range targetIDs {
		if rec, ok := r.records[models.VoteKey{Voter: voter, TargetType: targetType, TargetID: id}]; ok {
			result[id] = rec.VoteType
		}
	}
	return result, nil
}

func (r *memoryVoteRepository) CountByTargets(_ context.Context, targetType models.TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]models.Counts, error) {
	wanted := make(map[uuid.UUID]bool, len(targetIDs))
	for _, id := range targetIDs {
		wanted[id] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[uuid.UUID]models.Counts)
	for key, rec := range r.records {
		if key.TargetType != targetType || !wanted[key.TargetID] {
			continue
		}
		c := result[key.TargetID]
		addTally(&c, rec.VoteType, 1)
		result[key.TargetID] = c
	}
	return result, nil
}

func (r *memoryVoteRepository) CountByVoter(_ context.Context, voter uuid.UUID) (models.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var counts models.Counts
	for key, rec := range r.records {
		if key.Voter == voter {
			addTally(&counts, rec.VoteType, 1)
		}
	}
	return counts, nil
}

func (r *memoryVoteRepository) EnsureIndexes(context.Context) error {
	return nil
}
