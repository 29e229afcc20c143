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
	"github.com/qolzam/forum/votes/targets"
	"github.com/stretchr/testify/mock"
)

// MockTarget is a mock implementation of targets.Target for testing
type MockTarget struct {
	mock.Mock
	kind models.TargetType
}

// Ensure MockTarget implements Target
var _ targets.Target = (*MockTarget)(nil)

// NewMockTarget creates a mock target of kind.
func NewMockTarget(kind models.TargetType) *MockTarget {
	return &MockTarget{kind: kind}
}

// Kind returns the kind given to NewMockTarget.
func (m *MockTarget) Kind() models.TargetType {
	return m.kind
}

// Load mocks the Load method
func (m *MockTarget) Load(ctx context.Context, id uuid.UUID) (*targets.Snapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*targets.Snapshot), args.Error(1)
}

// ApplyVoteEffect mocks the ApplyVoteEffect method
func (m *MockTarget) ApplyVoteEffect(ctx context.Context, id uuid.UUID, delta models.CounterDelta) (*targets.CounterUpdate, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*targets.CounterUpdate), args.Error(1)
}

// StoreScore mocks the StoreScore method
func (m *MockTarget) StoreScore(ctx context.Context, id uuid.UUID, score float64) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}

// ResetCounts mocks the ResetCounts method
func (m *MockTarget) ResetCounts(ctx context.Context, id uuid.UUID, counts models.Counts, score float64) error {
	args := m.Called(ctx, id, counts, score)
	return args.Error(0)
}

// Scan mocks the Scan method
func (m *MockTarget) Scan(ctx context.Context, after uuid.UUID, limit int) ([]targets.Snapshot, error) {
	args := m.Called(ctx, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]targets.Snapshot), args.Error(1)
}

// CountsByAuthor mocks the CountsByAuthor method
func (m *MockTarget) CountsByAuthor(ctx context.Context, authorID uuid.UUID) (models.Counts, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).(models.Counts), args.Error(1)
}

// Rank returns net votes so tests can predict scores.
func (m *MockTarget) Rank(counts models.Counts, createdAt, now time.Time) float64 {
	return float64(counts.Net())
}

// NotificationType mocks the NotificationType method
func (m *MockTarget) NotificationType() string {
	return "post_upvote"
}
