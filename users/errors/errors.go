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

// User service specific errors
var (
	ErrUserNotFound = errors.New("user not found")
)

// Error codes
const (
	CodeUserNotFound  = "USER_NOT_FOUND"
	CodeInvalidUUID   = "INVALID_UUID"
	CodeDatabaseError = "DATABASE_ERROR"
)

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleServiceError handles service errors and returns appropriate HTTP responses
func HandleServiceError(c *fiber.Ctx, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUserNotFound), errors.Is(err, interfaces.ErrNoDocuments):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Code: CodeUserNotFound, Message: "User not found"})
	default:
		log.ErrorWithContext(c.UserContext(), "user request failed: %v", err)
		return c.Status(http.StatusServiceUnavailable).JSON(ErrorResponse{Code: CodeDatabaseError, Message: "Database operation failed"})
	}
}

// HandleUUIDError handles UUID parsing errors with 400 Bad Request
func HandleUUIDError(c *fiber.Ctx, fieldName string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Code: CodeInvalidUUID, Message: "Invalid " + fieldName + " format"})
}
