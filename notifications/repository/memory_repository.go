// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"sort"
	"sync"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/notifications/models"
)

type memoryNotificationRepository struct {
	mu    sync.RWMutex
	items []models.Notification
	ids   map[uuid.UUID]struct{}
}

// NewMemoryNotificationRepository creates an in-process notification store.
func NewMemoryNotificationRepository() NotificationRepository {
	return &memoryNotificationRepository{ids: make(map[uuid.UUID]struct{})}
}

func (r *memoryNotificationRepository) Insert(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ids[n.ObjectId]; exists {
		return interfaces.ErrDuplicateKey
	}
	r.ids[n.ObjectId] = struct{}{}
	r.items = append(r.items, *n)
	return nil
}

func (r *memoryNotificationRepository) ListByRecipient(_ context.Context, recipient uuid.UUID, offset, limit int) ([]models.Notification, error) {
	r.mu.RLock()
	list := []models.Notification{}
	for _, n := range r.items {
		if n.Recipient == recipient {
			list = append(list, n)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if offset >= len(list) {
		return []models.Notification{}, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (r *memoryNotificationRepository) EnsureIndexes(context.Context) error {
	return nil
}
