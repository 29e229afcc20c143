// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"

	"github.com/qolzam/forum/notifications/models"
	"github.com/qolzam/forum/notifications/repository"
)

// StoreSink persists notifications so recipients can list them.
type StoreSink struct {
	repo repository.NotificationRepository
}

// NewStoreSink creates a sink writing to repo.
func NewStoreSink(repo repository.NotificationRepository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string {
	return "store"
}

func (s *StoreSink) Deliver(ctx context.Context, n *models.Notification) error {
	return s.repo.Insert(ctx, n)
}
