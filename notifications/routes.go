// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package notifications

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/forum/internal/middleware/authjwt"
	platformconfig "github.com/qolzam/forum/internal/platform/config"
	"github.com/qolzam/forum/notifications/handlers"
)

// NotificationsHandlers holds all the handlers this router needs
type NotificationsHandlers struct {
	NotificationHandler *handlers.NotificationHandler
}

// RegisterRoutes is the single entry point for setting up notifications routes
func RegisterRoutes(app *fiber.App, handlers *NotificationsHandlers, cfg *platformconfig.Config) {
	group := app.Group("/notifications", authjwt.FromConfig(cfg.JWT))

	group.Get("/", handlers.NotificationHandler.ListNotifications)
}
