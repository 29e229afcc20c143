// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package errors

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/forum/internal/pkg/log"
)

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeMissingUserContext = "MISSING_USER_CONTEXT"
	CodeDatabaseError      = "DATABASE_ERROR"
)

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleServiceError logs err and answers 503 without leaking storage details.
func HandleServiceError(c *fiber.Ctx, err error) error {
	log.ErrorWithContext(c.UserContext(), "notification request failed: %v", err)
	return c.Status(http.StatusServiceUnavailable).JSON(ErrorResponse{Code: CodeDatabaseError, Message: "Database operation failed"})
}

// HandleUserContextError answers 401 when no authenticated user is present.
func HandleUserContextError(c *fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{Code: CodeMissingUserContext, Message: "Authentication required"})
}

// HandleInvalidRequestError handles invalid request errors with 400 Bad Request
func HandleInvalidRequestError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Code: CodeInvalidRequest, Message: message})
}
