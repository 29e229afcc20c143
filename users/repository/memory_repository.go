// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"bytes"
	"context"
	"sort"
	"sync"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/users/models"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

// NewMemoryUserRepository creates an in-process user store.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[uuid.UUID]models.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ObjectId]; exists {
		return interfaces.ErrDuplicateKey
	}
	r.users[user.ObjectId] = *user
	return nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, interfaces.ErrNoDocuments
	}
	return &user, nil
}

func (r *memoryUserRepository) IncrementReputation(_ context.Context, id uuid.UUID, delta models.ReputationDelta) (*ReputationUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		user = models.User{ObjectId: id}
	}
	clamped := user.Reputation.Apply(delta)
	r.users[id] = user
	return &ReputationUpdate{Reputation: user.Reputation, Clamped: clamped}, nil
}

func (r *memoryUserRepository) SetReputation(_ context.Context, id uuid.UUID, rep models.Reputation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		user = models.User{ObjectId: id}
	}
	user.Reputation = rep
	r.users[id] = user
	return nil
}

func (r *memoryUserRepository) Scan(_ context.Context, after uuid.UUID, limit int) ([]models.User, error) {
	r.mu.RLock()
	users := make([]models.User, 0, limit)
	for id, user := range r.users {
		if after == uuid.Nil || bytes.Compare(id.Bytes(), after.Bytes()) > 0 {
			users = append(users, user)
		}
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		return bytes.Compare(users[i].ObjectId.Bytes(), users[j].ObjectId.Bytes()) < 0
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *memoryUserRepository) EnsureIndexes(context.Context) error {
	return nil
}
