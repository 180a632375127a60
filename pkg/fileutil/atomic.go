// Package fileutil provides the small set of file helpers bbs relies on:
// atomic replacement of JSON documents and size-capped reads.
package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/trezero/bookmark-bar-switcher/internal/errors"
)

// AtomicWriteFile writes data to path by writing a temp file in the same
// directory and renaming it over the target, so readers never observe a
// half-written document. Missing parent directories are created with 0700.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}

	tmp, err := os.CreateTemp(dir, ".bbs-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	renamed = true
	return nil
}

// AtomicWriteJSON writes v as indented JSON (with a trailing newline) to path
// atomically. The file is private to the user (0600): it may hold tokens.
func AtomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	data = append(data, '\n')
	return AtomicWriteFile(path, data, 0o600)
}
