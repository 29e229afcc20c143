// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package votes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/forum/internal/middleware/admin"
	"github.com/qolzam/forum/internal/middleware/authjwt"
	"github.com/qolzam/forum/internal/middleware/ratelimit"
	platformconfig "github.com/qolzam/forum/internal/platform/config"
	"github.com/qolzam/forum/votes/handlers"
)

// VotesHandlers holds all the handlers this router needs
type VotesHandlers struct {
	VoteHandler *handlers.VoteHandler
}

// RegisterRoutes is the single entry point for setting up votes routes
func RegisterRoutes(app *fiber.App, handlers *VotesHandlers, cfg *platformconfig.Config) {
	authMiddleware := authjwt.FromConfig(cfg.JWT)

	voteChain := []fiber.Handler{authMiddleware}
	if cfg.Votes.RateLimitEnabled {
		voteChain = append(voteChain, ratelimit.New(ratelimit.Config{
			Name:   "vote",
			Max:    cfg.Votes.RateLimitMax,
			Window: cfg.Votes.RateLimitWindow,
		}))
	}

	// --- User-Facing Routes (JWT) ---
	group := app.Group("/votes")
	group.Post("/", append(voteChain, handlers.VoteHandler.Vote)...)
	group.Get("/", authMiddleware, handlers.VoteHandler.GetUserVotes)

	// --- Admin Routes (JWT + admin role) ---
	app.Post("/admin/votes/reconcile", authMiddleware, admin.New(), handlers.VoteHandler.Reconcile)
}
