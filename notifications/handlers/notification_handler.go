// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/forum/internal/pkg/query"
	"github.com/qolzam/forum/internal/types"
	"github.com/qolzam/forum/notifications/errors"
	"github.com/qolzam/forum/notifications/models"
	"github.com/qolzam/forum/notifications/services"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notificationService services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler with injected dependencies
func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications lists the caller's notifications, newest first.
// Endpoint: GET /notifications?page=1&limit=20
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	user, ok := c.Locals(types.UserCtxName).(types.UserContext)
	if !ok {
		return errors.HandleUserContextError(c)
	}

	var q models.NotificationQuery
	if err := query.Decode(c, &q); err != nil {
		return errors.HandleInvalidRequestError(c, err.Error())
	}

	result, err := h.notificationService.ListForRecipient(c.UserContext(), user.UserID, &q)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(result)
}
