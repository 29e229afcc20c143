// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/notifications/models"
)

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error

	// ListByRecipient returns the recipient's notifications, newest first.
	ListByRecipient(ctx context.Context, recipient uuid.UUID, offset, limit int) ([]models.Notification, error)

	EnsureIndexes(ctx context.Context) error
}
