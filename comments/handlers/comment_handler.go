// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/comments/errors"
	"github.com/qolzam/forum/comments/models"
	"github.com/qolzam/forum/comments/services"
	"github.com/qolzam/forum/internal/pkg/query"
	"github.com/qolzam/forum/internal/types"
)

// CommentHandler handles all comment-related HTTP requests
type CommentHandler struct {
	commentService services.CommentService
}

// NewCommentHandler creates a new CommentHandler with injected dependencies
func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateComment handles comment creation
// Endpoint: POST /posts/:postId/comments
func (h *CommentHandler) CreateComment(c *fiber.Ctx) error {
	postID, err := uuid.FromString(c.Params("postId"))
	if err != nil {
		return errors.HandleUUIDError(c, "postId")
	}

	var req models.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	user, ok := c.Locals(types.UserCtxName).(types.UserContext)
	if !ok {
		return errors.HandleServiceError(c, errors.ErrMissingUserContext)
	}

	comment, err := h.commentService.CreateComment(c.UserContext(), user, postID, &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(comment)
}

// GetComment returns a live comment.
// Endpoint: GET /comments/:commentId
func (h *CommentHandler) GetComment(c *fiber.Ctx) error {
	commentID, err := uuid.FromString(c.Params("commentId"))
	if err != nil {
		return errors.HandleUUIDError(c, "commentId")
	}

	comment, err := h.commentService.GetComment(c.UserContext(), commentID)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment soft-deletes a comment owned by the caller.
// Endpoint: DELETE /comments/:commentId
func (h *CommentHandler) DeleteComment(c *fiber.Ctx) error {
	commentID, err := uuid.FromString(c.Params("commentId"))
	if err != nil {
		return errors.HandleUUIDError(c, "commentId")
	}

	user, ok := c.Locals(types.UserCtxName).(types.UserContext)
	if !ok {
		return errors.HandleServiceError(c, errors.ErrMissingUserContext)
	}

	if err := h.commentService.DeleteComment(c.UserContext(), user, commentID); err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListComments lists the live comments of a post.
// Endpoint: GET /posts/:postId/comments?sort=best|new&page=1&limit=50
func (h *CommentHandler) ListComments(c *fiber.Ctx) error {
	postID, err := uuid.FromString(c.Params("postId"))
	if err != nil {
		return errors.HandleUUIDError(c, "postId")
	}

	var q models.CommentQuery
	if err := query.Decode(c, &q); err != nil {
		return errors.HandleInvalidRequestError(c, err.Error())
	}

	result, err := h.commentService.ListComments(c.UserContext(), postID, &q)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(result)
}
