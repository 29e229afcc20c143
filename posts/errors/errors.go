// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package errors

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/pkg/log"
)

// Post service specific errors
var (
	ErrPostNotFound       = errors.New("post not found")
	ErrPostOwnership      = errors.New("user is not the owner of the post")
	ErrInvalidPostData    = errors.New("invalid post data")
	ErrInvalidSort        = errors.New("invalid sort order")
	ErrMissingUserContext = errors.New("missing user context")
)

// Error codes
const (
	CodePostNotFound       = "POST_NOT_FOUND"
	CodePostOwnership      = "FORBIDDEN"
	CodeInvalidPostData    = "INVALID_POST_DATA"
	CodeInvalidSort        = "INVALID_SORT"
	CodeInvalidUUID        = "INVALID_UUID"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeMissingUserContext = "MISSING_USER_CONTEXT"
	CodeDatabaseError      = "DATABASE_ERROR"
)

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HandleServiceError handles service errors and returns appropriate HTTP responses
func HandleServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, interfaces.ErrNoDocuments):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Code: CodePostNotFound, Message: "Post not found"})
	case errors.Is(err, ErrPostOwnership):
		return c.Status(http.StatusForbidden).JSON(ErrorResponse{Code: CodePostOwnership, Message: "You can only modify your own posts"})
	case errors.Is(err, ErrInvalidPostData):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Code: CodeInvalidPostData, Message: "Invalid post data", Details: err.Error()})
	case errors.Is(err, ErrInvalidSort):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Code: CodeInvalidSort, Message: "Invalid sort order", Details: err.Error()})
	case errors.Is(err, ErrMissingUserContext):
		return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{Code: CodeMissingUserContext, Message: "Authentication required"})
	default:
		log.ErrorWithContext(c.UserContext(), "post request failed: %v", err)
		return c.Status(http.StatusServiceUnavailable).JSON(ErrorResponse{Code: CodeDatabaseError, Message: "Database operation failed"})
	}
}

// HandleUUIDError handles UUID parsing errors with 400 Bad Request
func HandleUUIDError(c *fiber.Ctx, fieldName string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Code: CodeInvalidUUID, Message: "Invalid " + fieldName + " format"})
}

// HandleInvalidRequestError handles invalid request errors with 400 Bad Request
func HandleInvalidRequestError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Code: CodeInvalidRequest, Message: message})
}
