// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/forum/internal/database/interfaces"
)

// Kind classifies vote failures for callers and the HTTP layer.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindSelfVote   Kind = "self_vote"
	KindConflict   Kind = "conflict"
	KindDependency Kind = "dependency"
)

// Sentinels matched by errors.Is against any VoteError of the same kind.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("target not found")
	ErrSelfVote   = errors.New("cannot vote on own content")
	ErrConflict   = errors.New("concurrent modification")
	ErrDependency = errors.New("dependency unavailable")
)

// Error codes
const (
	CodeInvalidTargetType  = "INVALID_TARGET_TYPE"
	CodeInvalidVoteType    = "INVALID_VOTE_TYPE"
	CodeInvalidUUID        = "INVALID_UUID"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeTargetNotFound     = "TARGET_NOT_FOUND"
	CodeSelfVote           = "SELF_VOTE"
	CodeConflict           = "VOTE_CONFLICT"
	CodeDependency         = "DEPENDENCY_UNAVAILABLE"
	CodeMissingUserContext = "MISSING_USER_CONTEXT"
	CodeInternal           = "INTERNAL_ERROR"
)

// VoteError carries a kind, a machine readable code and a human message.
type VoteError struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *VoteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *VoteError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel of the error's kind.
func (e *VoteError) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(kind Kind) error {
	switch kind {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindSelfVote:
		return ErrSelfVote
	case KindConflict:
		return ErrConflict
	case KindDependency:
		return ErrDependency
	}
	return nil
}

// NewValidationError reports malformed input.
func NewValidationError(code, message string) *VoteError {
	return &VoteError{Kind: KindValidation, Code: code, Message: message}
}

// NewNotFoundError reports a missing or soft-deleted target.
func NewNotFoundError(message string) *VoteError {
	return &VoteError{Kind: KindNotFound, Code: CodeTargetNotFound, Message: message}
}

// NewSelfVoteError reports a vote by the target's author.
func NewSelfVoteError() *VoteError {
	return &VoteError{Kind: KindSelfVote, Code: CodeSelfVote, Message: "You cannot vote on your own content"}
}

// NewConflictError reports a ledger slot changed by a concurrent request.
func NewConflictError(cause error) *VoteError {
	return &VoteError{Kind: KindConflict, Code: CodeConflict, Message: "Vote was modified concurrently, please retry", Cause: cause}
}

// NewDependencyError reports an unavailable storage backend.
func NewDependencyError(op string, cause error) *VoteError {
	return &VoteError{Kind: KindDependency, Code: CodeDependency, Message: op + " failed", Cause: cause}
}

// FromRepository classifies a repository error raised during op.
func FromRepository(op string, err error) error {
	var voteErr *VoteError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &voteErr):
		return err
	case errors.Is(err, interfaces.ErrNoDocuments):
		return NewNotFoundError("Target not found")
	case errors.Is(err, interfaces.ErrDuplicateKey), errors.Is(err, interfaces.ErrTransactionConflict):
		return NewConflictError(err)
	default:
		return NewDependencyError(op, err)
	}
}

// KindOf returns the kind of err, or "" when it is not a VoteError.
func KindOf(err error) Kind {
	var voteErr *VoteError
	if errors.As(err, &voteErr) {
		return voteErr.Kind
	}
	return ""
}

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// StatusOf maps a kind to its HTTP status.
func StatusOf(kind Kind) int {
	switch kind {
	case KindValidation, KindSelfVote:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindDependency:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// HandleServiceError handles service errors and returns appropriate HTTP responses
func HandleServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var voteErr *VoteError
	if errors.As(err, &voteErr) {
		resp := ErrorResponse{Code: voteErr.Code, Message: voteErr.Message}
		// Storage internals stay out of client responses.
		if voteErr.Cause != nil && voteErr.Kind != KindDependency && voteErr.Kind != KindConflict {
			resp.Details = voteErr.Cause.Error()
		}
		return c.Status(StatusOf(voteErr.Kind)).JSON(resp)
	}

	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
		Code:    CodeInternal,
		Message: "An unexpected error occurred",
	})
}

// HandleValidationError handles validation errors with 400 Bad Request
func HandleValidationError(c *fiber.Ctx, code, message string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// HandleUserContextError answers 401 when the authenticated user is missing.
func HandleUserContextError(c *fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{
		Code:    CodeMissingUserContext,
		Message: "Authentication required",
	})
}

// HandleUUIDError handles UUID parsing errors with 400 Bad Request
func HandleUUIDError(c *fiber.Ctx, fieldName string) error {
	return HandleValidationError(c, CodeInvalidUUID, fmt.Sprintf("Invalid %s format", fieldName))
}
