package a

import (
	"os"
	"testing"
)

func TestEnv(t *testing.T) {
	os.Setenv("DB_TYPE", "memory") // want `os.Setenv is forbidden in tests`
	os.Unsetenv("DB_TYPE")         // want `os.Unsetenv is forbidden in tests`
	t.Setenv("DB_TYPE", "memory")  // want `testing.T.Setenv is forbidden in tests`
	_ = os.Getenv("MONGODB_URI")
}
