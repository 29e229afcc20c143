// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package users

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/forum/internal/middleware/authjwt"
	platformconfig "github.com/qolzam/forum/internal/platform/config"
	"github.com/qolzam/forum/users/handlers"
)

// UsersHandlers holds all the handlers this router needs
type UsersHandlers struct {
	UserHandler *handlers.UserHandler
}

// RegisterRoutes is the single entry point for setting up users routes
func RegisterRoutes(app *fiber.App, handlers *UsersHandlers, cfg *platformconfig.Config) {
	group := app.Group("/users", authjwt.FromConfig(cfg.JWT))

	group.Get("/:userId/reputation", handlers.UserHandler.GetReputation)
}
