package logging

import (
	"os"
	"testing"
)

// unsetForTest removes key from the environment and restores it on cleanup.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		}
	})
}
