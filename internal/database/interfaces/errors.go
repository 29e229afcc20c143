// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

import "errors"

// Common repository errors
var (
	ErrNoDocuments         = NewRepositoryError("no documents found", "NOT_FOUND")
	ErrDuplicateKey        = NewRepositoryError("duplicate key error", "DUPLICATE_KEY")
	ErrConnectionFailed    = NewRepositoryError("database connection failed", "CONNECTION_FAILED")
	ErrTransactionFailed   = NewRepositoryError("transaction failed", "TRANSACTION_FAILED")
	ErrTransactionConflict = NewRepositoryError("transaction conflict detected", "TRANSACTION_CONFLICT")
)

// RepositoryError represents a repository specific error
type RepositoryError struct {
	Message string
	Code    string
	cause   error
}

func (e *RepositoryError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Is matches any RepositoryError carrying the same code, so wrapped copies still compare
// equal to the package sentinels.
func (e *RepositoryError) Is(target error) bool {
	var other *RepositoryError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

func (e *RepositoryError) Unwrap() error {
	return e.cause
}

// Wrap returns a copy of the error carrying cause.
func (e *RepositoryError) Wrap(cause error) *RepositoryError {
	return &RepositoryError{Message: e.Message, Code: e.Code, cause: cause}
}

// NewRepositoryError creates a new repository error
func NewRepositoryError(message, code string) *RepositoryError {
	return &RepositoryError{
		Message: message,
		Code:    code,
	}
}
