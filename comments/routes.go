// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package comments

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/forum/comments/handlers"
	"github.com/qolzam/forum/internal/middleware/authjwt"
	platformconfig "github.com/qolzam/forum/internal/platform/config"
)

// CommentsHandlers holds all the handlers this router needs
type CommentsHandlers struct {
	CommentHandler *handlers.CommentHandler
}

// RegisterRoutes is the single entry point for setting up comments routes
func RegisterRoutes(app *fiber.App, handlers *CommentsHandlers, cfg *platformconfig.Config) {
	authMiddleware := authjwt.FromConfig(cfg.JWT)

	// --- Public Routes ---
	app.Get("/posts/:postId/comments", handlers.CommentHandler.ListComments)
	app.Get("/comments/:commentId", handlers.CommentHandler.GetComment)

	// --- User-Facing Routes (JWT) ---
	app.Post("/posts/:postId/comments", authMiddleware, handlers.CommentHandler.CreateComment)
	app.Delete("/comments/:commentId", authMiddleware, handlers.CommentHandler.DeleteComment)
}
