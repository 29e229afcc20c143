// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/forum/internal/pkg/log"
	"github.com/qolzam/forum/internal/pkg/query"
	"github.com/qolzam/forum/internal/types"
	"github.com/qolzam/forum/votes/errors"
	"github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/services"
)

// Reconciler runs a full reconciliation pass on demand.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (*services.ReconcileReport, error)
}

// VoteHandler handles all vote-related HTTP requests
type VoteHandler struct {
	voteService services.VoteService
	reconciler  Reconciler
}

// NewVoteHandler creates a new VoteHandler with injected dependencies
func NewVoteHandler(voteService services.VoteService, reconciler Reconciler) *VoteHandler {
	return &VoteHandler{
		voteService: voteService,
		reconciler:  reconciler,
	}
}

// Vote casts, toggles or flips the caller's vote.
// Endpoint: POST /votes
func (h *VoteHandler) Vote(c *fiber.Ctx) error {
	var req models.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleValidationError(c, errors.CodeInvalidRequest, "Invalid request body")
	}

	user, ok := c.Locals(types.UserCtxName).(types.UserContext)
	if !ok {
		return errors.HandleUserContextError(c)
	}

	result, err := h.voteService.Vote(c.UserContext(), user.UserID, &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(result)
}

// GetUserVotes returns the caller's vote state on a set of targets.
// Endpoint: GET /votes?targetType=Post&targetIds=a,b,c
func (h *VoteHandler) GetUserVotes(c *fiber.Ctx) error {
	var q models.UserVotesQuery
	if err := query.Decode(c, &q); err != nil {
		return errors.HandleValidationError(c, errors.CodeInvalidRequest, err.Error())
	}

	user, ok := c.Locals(types.UserCtxName).(types.UserContext)
	if !ok {
		return errors.HandleUserContextError(c)
	}

	states, err := h.voteService.GetUserVotes(c.UserContext(), user.UserID, q.TargetType, splitIDs(q.TargetIDs))
	if err != nil {
		return errors.HandleServiceError(c, err)
	}

	resp := models.UserVotesResponse{Votes: make(map[string]models.State, len(states))}
	for id, state := range states {
		resp.Votes[id.String()] = state
	}
	return c.JSON(resp)
}

// Reconcile runs a reconciliation pass and reports what was repaired.
// Endpoint: POST /admin/votes/reconcile
func (h *VoteHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.reconciler.ReconcileAll(c.UserContext())
	if err != nil {
		log.ErrorWithContext(c.UserContext(), "manual reconciliation failed: %v", err)
		return errors.HandleServiceError(c, errors.NewDependencyError("reconcile", err))
	}
	return c.JSON(report)
}

func splitIDs(raw []string) []string {
	var ids []string
	for _, value := range raw {
		for _, id := range strings.Split(value, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
