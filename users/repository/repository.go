// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/users/models"
)

// ReputationUpdate is the outcome of a floored reputation adjustment.
type ReputationUpdate struct {
	Reputation models.Reputation
	// Clamped lists the counter paths whose result would have been negative.
	Clamped []string
}

// UserRepository defines the user operations the forum needs.
type UserRepository interface {
	// Create inserts a new user. Returns interfaces.ErrDuplicateKey for an existing id.
	Create(ctx context.Context, user *models.User) error

	// FindByID returns interfaces.ErrNoDocuments when the user does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// IncrementReputation atomically applies delta, flooring every counter at zero.
	// A user without a document is created with zeroed counters first.
	IncrementReputation(ctx context.Context, id uuid.UUID, delta models.ReputationDelta) (*ReputationUpdate, error)

	// Scan pages through users ordered by id, starting after the given id (uuid.Nil for the start).
	Scan(ctx context.Context, after uuid.UUID, limit int) ([]models.User, error)

	// SetReputation overwrites the counters, used by reconciliation.
	SetReputation(ctx context.Context, id uuid.UUID, rep models.Reputation) error

	EnsureIndexes(ctx context.Context) error
}
