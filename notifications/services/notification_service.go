// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/notifications/models"
	"github.com/qolzam/forum/notifications/repository"
)

// Listing limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NotificationService lists stored notifications.
type NotificationService interface {
	ListForRecipient(ctx context.Context, recipient uuid.UUID, query *models.NotificationQuery) (*models.NotificationsListResponse, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListForRecipient(ctx context.Context, recipient uuid.UUID, query *models.NotificationQuery) (*models.NotificationsListResponse, error) {
	page, limit := query.Page, query.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	list, err := s.repo.ListByRecipient(ctx, recipient, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &models.NotificationsListResponse{Notifications: list, Page: page, Limit: limit}, nil
}
