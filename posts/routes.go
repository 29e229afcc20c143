// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package posts

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/forum/internal/middleware/authjwt"
	platformconfig "github.com/qolzam/forum/internal/platform/config"
	"github.com/qolzam/forum/posts/handlers"
)

// PostsHandlers holds all the handlers this router needs
type PostsHandlers struct {
	PostHandler *handlers.PostHandler
}

// RegisterRoutes is the single entry point for setting up posts routes
func RegisterRoutes(app *fiber.App, handlers *PostsHandlers, cfg *platformconfig.Config) {
	authMiddleware := authjwt.FromConfig(cfg.JWT)

	group := app.Group("/posts")

	// --- Public Routes ---
	group.Get("/", handlers.PostHandler.ListPosts)
	group.Get("/:postId", handlers.PostHandler.GetPost)

	// --- User-Facing Routes (JWT) ---
	group.Post("/", authMiddleware, handlers.PostHandler.CreatePost)
	group.Delete("/:postId", authMiddleware, handlers.PostHandler.DeletePost)
}
