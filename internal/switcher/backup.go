package switcher

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	"github.com/trezero/bookmark-bar-switcher/internal/bookmarks"
	"github.com/trezero/bookmark-bar-switcher/internal/lock"
	"github.com/trezero/bookmark-bar-switcher/internal/snapshot"
	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

// untitledBar replaces empty bar titles in backups.
const untitledBar = "Untitled Bar"

// CreateBackup captures every bar folder plus the primary slot.
func (e *Engine) CreateBackup(ctx context.Context) (backup.BookmarkBackup, error) {
	active, err := e.ActiveBar(ctx)
	if err != nil {
		return backup.BookmarkBackup{}, err
	}
	bars, err := e.Bars(ctx)
	if err != nil {
		return backup.BookmarkBackup{}, err
	}

	snaps := make([]backup.BarSnapshot, 0, len(bars)+1)
	for _, bar := range bars {
		list, err := snapshot.Serialize(ctx, e.tree, bar.ID)
		if err != nil {
			return backup.BookmarkBackup{}, errors.Wrapf(err, "capturing bar %q", bar.Title)
		}
		title := bar.Title
		if title == "" {
			title = untitledBar
		}
		snaps = append(snaps, backup.BarSnapshot{ID: bar.ID, Title: title, Bookmarks: list})
	}

	list, err := snapshot.Serialize(ctx, e.tree, e.layout.PrimaryID)
	if err != nil {
		return backup.BookmarkBackup{}, errors.Wrap(err, "capturing primary bar")
	}
	snaps = append(snaps, backup.BarSnapshot{
		ID:        e.layout.PrimaryID,
		Title:     backup.PrimaryBarTitle,
		Bookmarks: list,
	})

	return backup.BookmarkBackup{
		Version:          backup.FormatVersion,
		Timestamp:        e.now().UnixMilli(),
		ExtensionVersion: e.version,
		ActiveBarID:      active.ID,
		Bars:             snaps,
	}, nil
}

// BackupNow captures and saves a backup to local history.
func (e *Engine) BackupNow(ctx context.Context) (backup.BookmarkBackup, error) {
	b, err := e.CreateBackup(ctx)
	if err != nil {
		return backup.BookmarkBackup{}, err
	}
	if err := e.backups.Save(ctx, b); err != nil {
		return backup.BookmarkBackup{}, err
	}
	return b, nil
}

// RestoreFromBackup replaces the primary slot and every bar folder with the
// contents of b. Links kept directly in the container are left alone.
//
// A concurrent operation makes it fail with lock.ErrContention. An invalid
// backup is rejected before the tree is touched. A failure midway leaves
// the tree partially restored.
func (e *Engine) RestoreFromBackup(ctx context.Context, b backup.BookmarkBackup) error {
	if !e.lock.TryAcquire() {
		return errors.Wrap(lock.ErrContention, "cannot restore while a bar switch is in progress")
	}
	defer e.lock.Release()

	if err := b.Validate(); err != nil {
		return err
	}

	container, err := e.containerID(ctx)
	if err != nil {
		return err
	}

	primary := e.layout.PrimaryID
	children, err := e.tree.Children(ctx, primary)
	if err != nil {
		return errors.Wrap(err, "reading primary bar")
	}
	for _, c := range children {
		if err := e.tree.RemoveTree(ctx, c.ID); err != nil {
			return errors.Wrapf(err, "clearing %q", c.Title)
		}
	}

	bars, err := e.barNodes(ctx)
	if err != nil {
		return err
	}
	for _, bar := range bars {
		if err := e.tree.RemoveTree(ctx, bar.ID); err != nil {
			return errors.Wrapf(err, "removing bar %q", bar.Title)
		}
	}

	var active *Bar
	for _, snap := range b.Bars {
		if snap.IsPrimary() {
			if err := snapshot.Restore(ctx, e.tree, primary, snap.Bookmarks); err != nil {
				return errors.Wrap(err, "restoring primary bar")
			}
			continue
		}
		folder, err := e.tree.Create(ctx, bookmarks.CreateDetails{ParentID: container, Title: snap.Title})
		if err != nil {
			return errors.Wrapf(err, "recreating bar %q", snap.Title)
		}
		if err := snapshot.Restore(ctx, e.tree, folder.ID, snap.Bookmarks); err != nil {
			return errors.Wrapf(err, "restoring bar %q", snap.Title)
		}
		if snap.ID == b.ActiveBarID {
			active = &Bar{ID: folder.ID, Title: folder.Title}
		}
	}

	if active == nil {
		e.logger.Warn("restored backup names no known active bar", "activeBarId", b.ActiveBarID)
		if err := e.state.Delete(ctx, state.KeyActiveBar); err != nil {
			return errors.Wrap(err, "clearing active bar")
		}
	} else if err := e.state.Set(ctx, state.KeyActiveBar, *active); err != nil {
		return errors.Wrap(err, "saving active bar")
	}

	barCount, links, folders := b.Stats()
	e.logger.Info("restored backup", "bars", barCount, "links", links, "folders", folders, "taken", b.Time())
	return nil
}
