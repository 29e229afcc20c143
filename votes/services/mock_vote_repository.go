// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/votes/models"
	voteRepository "github.com/qolzam/forum/votes/repository"
	"github.com/stretchr/testify/mock"
)

// MockVoteRepository is a mock implementation of VoteRepository for testing
type MockVoteRepository struct {
	mock.Mock
}

// Ensure MockVoteRepository implements VoteRepository
var _ voteRepository.VoteRepository = (*MockVoteRepository)(nil)

// Find mocks the Find method
func (m *MockVoteRepository) Find(ctx context.Context, key models.VoteKey) (*models.VoteRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VoteRecord), args.Error(1)
}

// Insert mocks the Insert method
func (m *MockVoteRepository) Insert(ctx context.Context, rec *models.VoteRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// UpdateType mocks the UpdateType method
func (m *MockVoteRepository) UpdateType(ctx context.Context, key models.VoteKey, from, to models.VoteType, at time.Time) error {
	args := m.Called(ctx, key, from, to, at)
	return args.Error(0)
}

// Delete mocks the Delete method
func (m *MockVoteRepository) Delete(ctx context.Context, key models.VoteKey, expected models.VoteType) error {
	args := m.Called(ctx, key, expected)
	return args.Error(0)
}

// FindByVoterAndTargets mocks the FindByVoterAndTargets method
func (m *MockVoteRepository) FindByVoterAndTargets(ctx context.Context, voter uuid.UUID, targetType models.TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]models.VoteType, error) {
	args := m.Called(ctx, voter, targetType, targetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]models.VoteType), args.Error(1)
}

// CountByTargets mocks the CountByTargets method
func (m *MockVoteRepository) CountByTargets(ctx context.Context, targetType models.TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]models.Counts, error) {
	args := m.Called(ctx, targetType, targetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]models.Counts), args.Error(1)
}

// CountByVoter mocks the CountByVoter method
func (m *MockVoteRepository) CountByVoter(ctx context.Context, voter uuid.UUID) (models.Counts, error) {
	args := m.Called(ctx, voter)
	return args.Get(0).(models.Counts), args.Error(1)
}

// EnsureIndexes mocks the EnsureIndexes method
func (m *MockVoteRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
