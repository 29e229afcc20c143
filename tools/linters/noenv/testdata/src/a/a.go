package a

import "os"

// Outside tests the environment is fair game.
func Configure() {
	os.Setenv("DB_TYPE", "memory")
}
