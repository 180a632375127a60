package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used below each XDG base directory.
const AppName = "bbs"

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
func DataHome() string {
	return xdg.DataHome
}

// ConfigDir returns <ConfigHome>/bbs.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// DataDir returns <DataHome>/bbs.
func DataDir() string {
	return filepath.Join(DataHome(), AppName)
}

// TreeFile returns the default location of the file-backed bookmark tree.
func TreeFile() string {
	return filepath.Join(DataDir(), "bookmarks.json")
}

// StateDir returns the default directory of the file-backed state store.
func StateDir() string {
	return filepath.Join(DataDir(), "state")
}
