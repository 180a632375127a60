package backup

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/trezero/bookmark-bar-switcher/internal/snapshot"
)

// FormatVersion is the backup format version written by this package.
const FormatVersion = 1

// DefaultCapacity is the default number of backups kept in local history.
const DefaultCapacity = 5

// PrimaryBarTitle marks the bar snapshot captured from the primary slot.
// Bars may not use this title.
const PrimaryBarTitle = "Bookmarks Bar (visible)"

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backup has been saved yet.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrInvalidBackup indicates a backup that cannot be restored.
	ErrInvalidBackup = errors.New("invalid backup")

	// ErrIndexOutOfRange indicates a history index past the saved backups.
	ErrIndexOutOfRange = errors.New("backup index out of range")
)

// BarSnapshot is one bar's folder and full subtree at a point in time.
type BarSnapshot struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Bookmarks snapshot.List `json:"bookmarks"`
}

// IsPrimary reports whether s was captured from the primary slot.
func (s BarSnapshot) IsPrimary() bool {
	return s.Title == PrimaryBarTitle
}

// BookmarkBackup is the unit persisted locally and transferred remotely.
type BookmarkBackup struct {
	Version int `json:"version"`
	// Timestamp is the capture time in Unix milliseconds.
	Timestamp        int64         `json:"timestamp"`
	ExtensionVersion string        `json:"extensionVersion"`
	ActiveBarID      string        `json:"activeBarId"`
	Bars             []BarSnapshot `json:"bars"`
}

// Time returns the capture time.
func (b BookmarkBackup) Time() time.Time {
	return time.UnixMilli(b.Timestamp)
}

// Primary returns the bar captured from the primary slot.
func (b BookmarkBackup) Primary() (BarSnapshot, bool) {
	for _, bar := range b.Bars {
		if bar.IsPrimary() {
			return bar, true
		}
	}
	return BarSnapshot{}, false
}

// Validate checks that b can be restored: exactly one primary bar and
// well-formed bookmark lists. Snapshot problems match snapshot.ErrCodec.
func (b BookmarkBackup) Validate() error {
	primaries := 0
	for _, bar := range b.Bars {
		if bar.IsPrimary() {
			primaries++
		}
		if err := bar.Bookmarks.Validate(); err != nil {
			return errors.Wrapf(err, "bar %q", bar.Title)
		}
	}
	if primaries != 1 {
		return errors.Wrapf(ErrInvalidBackup, "found %d primary bars, want 1", primaries)
	}
	return nil
}

// Stats counts bars, links and folders in b.
func (b BookmarkBackup) Stats() (bars, links, folders int) {
	for _, bar := range b.Bars {
		l, f := bar.Bookmarks.Stats()
		links += l
		folders += f
	}
	return len(b.Bars), links, folders
}
