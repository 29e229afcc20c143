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
	posterrors "github.com/qolzam/forum/posts/errors"
)

// Comment service specific errors
var (
	ErrCommentNotFound    = errors.New("comment not found")
	ErrCommentOwnership   = errors.New("user is not the owner of the comment")
	ErrInvalidCommentData = errors.New("invalid comment data")
	ErrInvalidSort        = errors.New("invalid sort order")
	ErrMissingUserContext = errors.New("missing user context")
)

// Error codes
const (
	CodeCommentNotFound    = "COMMENT_NOT_FOUND"
	CodePostNotFound       = "POST_NOT_FOUND"
	CodeCommentOwnership   = "FORBIDDEN"
	CodeInvalidCommentData = "INVALID_COMMENT_DATA"
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
	case errors.Is(err, posterrors.ErrPostNotFound):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Code: CodePostNotFound, Message: "Post not found"})
	case errors.Is(err, ErrCommentNotFound), errors.Is(err, interfaces.ErrNoDocuments):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Code: CodeCommentNotFound, Message: "Comment not found"})
	case errors.Is(err, ErrCommentOwnership):
		return c.Status(http.StatusForbidden).JSON(ErrorResponse{Code: CodeCommentOwnership, Message: "You can only modify your own comments"})
	case errors.Is(err, ErrInvalidCommentData):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Code: CodeInvalidCommentData, Message: "Invalid comment data", Details: err.Error()})
	case errors.Is(err, ErrInvalidSort):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Code: CodeInvalidSort, Message: "Invalid sort order", Details: err.Error()})
	case errors.Is(err, ErrMissingUserContext):
		return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{Code: CodeMissingUserContext, Message: "Authentication required"})
	default:
		log.ErrorWithContext(c.UserContext(), "comment request failed: %v", err)
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
