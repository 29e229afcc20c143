package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext_IsAdmin(t *testing.T) {
	assert.True(t, UserContext{SystemRole: AdminRole}.IsAdmin())
	assert.False(t, UserContext{SystemRole: UserRole}.IsAdmin())
	assert.False(t, UserContext{}.IsAdmin())
}
