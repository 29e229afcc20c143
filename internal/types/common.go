package types

import (
	uuid "github.com/gofrs/uuid"
)

// HTTP Header Constants
const (
	HeaderUID           = "uid"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
)

// Authentication Constants
const (
	BearerPrefix = "Bearer "
)

// Common Values
const (
	UserRole  = "user"
	AdminRole = "admin"
)

// UserCtxName is the fiber Locals key holding the authenticated UserContext.
const UserCtxName = "user"

// UserContext is the identity of the caller as established by the auth middleware.
type UserContext struct {
	UserID      uuid.UUID `json:"uid"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	SystemRole  string    `json:"role"`
}

// IsAdmin reports whether the caller carries the admin system role.
func (u UserContext) IsAdmin() bool {
	return u.SystemRole == AdminRole
}
