// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/pkg/query"
	"github.com/qolzam/forum/internal/types"
	"github.com/qolzam/forum/posts/errors"
	"github.com/qolzam/forum/posts/models"
	"github.com/qolzam/forum/posts/services"
)

// PostHandler handles all post-related HTTP requests
type PostHandler struct {
	postService services.PostService
}

// NewPostHandler creates a new PostHandler with injected dependencies
func NewPostHandler(postService services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePost handles post creation
// Endpoint: POST /posts
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var req models.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}

	user, ok := c.Locals(types.UserCtxName).(types.UserContext)
	if !ok {
		return errors.HandleServiceError(c, errors.ErrMissingUserContext)
	}

	post, err := h.postService.CreatePost(c.UserContext(), user, &req)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(post)
}

// GetPost returns a live post.
// Endpoint: GET /posts/:postId
func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	postID, err := uuid.FromString(c.Params("postId"))
	if err != nil {
		return errors.HandleUUIDError(c, "postId")
	}

	post, err := h.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost soft-deletes a post owned by the caller.
// Endpoint: DELETE /posts/:postId
func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	postID, err := uuid.FromString(c.Params("postId"))
	if err != nil {
		return errors.HandleUUIDError(c, "postId")
	}

	user, ok := c.Locals(types.UserCtxName).(types.UserContext)
	if !ok {
		return errors.HandleServiceError(c, errors.ErrMissingUserContext)
	}

	if err := h.postService.DeletePost(c.UserContext(), user, postID); err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListPosts lists live posts.
// Endpoint: GET /posts?sort=hot|new&page=1&limit=20
func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	var q models.PostQuery
	if err := query.Decode(c, &q); err != nil {
		return errors.HandleInvalidRequestError(c, err.Error())
	}

	result, err := h.postService.ListPosts(c.UserContext(), &q)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	return c.JSON(result)
}
