package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedPaths(t *testing.T) {
	assert.Equal(t, filepath.Join(ConfigHome(), "bbs"), ConfigDir())
	assert.Equal(t, filepath.Join(DataHome(), "bbs"), DataDir())
	assert.Equal(t, filepath.Join(DataDir(), "bookmarks.json"), TreeFile())
	assert.Equal(t, filepath.Join(DataDir(), "state"), StateDir())
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, EnsureDir(dir, 0))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(DefaultDirPerm), info.Mode().Perm())

	// idempotent
	require.NoError(t, EnsureDir(dir, 0))
}
