// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/users/errors"
	"github.com/qolzam/forum/users/models"
)

// UserFinder is the read side the handler needs.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users UserFinder
}

// NewUserHandler creates a new UserHandler with injected dependencies
func NewUserHandler(users UserFinder) *UserHandler {
	return &UserHandler{users: users}
}

// GetReputation returns a user's vote counters and karma.
// Endpoint: GET /users/:userId/reputation
func (h *UserHandler) GetReputation(c *fiber.Ctx) error {
	userID, err := uuid.FromString(c.Params("userId"))
	if err != nil {
		return errors.HandleUUIDError(c, "userId")
	}

	user, err := h.users.FindByID(c.UserContext(), userID)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}

	return c.JSON(models.ReputationResponse{
		UserID:     user.ObjectId,
		Reputation: user.Reputation,
		Karma:      user.Reputation.Karma(),
	})
}
