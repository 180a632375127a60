package switcher

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	"github.com/trezero/bookmark-bar-switcher/internal/bookmarks"
	"github.com/trezero/bookmark-bar-switcher/internal/lock"
	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return "", errors.Wrap(ErrInvalidTitle, "title is empty")
	case title == backup.PrimaryBarTitle:
		return "", errors.Wrapf(ErrInvalidTitle, "%q is reserved", title)
	}
	return title, nil
}

// exclusive runs fn holding the operation lock, failing with
// lock.ErrContention when another operation holds it.
func (e *Engine) exclusive(fn func() error) error {
	if !e.lock.TryAcquire() {
		return lock.ErrContention
	}
	defer e.lock.Release()
	return fn()
}

// requireBar checks that id is a bar folder in the container.
func (e *Engine) requireBar(ctx context.Context, id string) (bookmarks.Node, error) {
	container, err := e.containerID(ctx)
	if err != nil {
		return bookmarks.Node{}, err
	}
	n, err := e.tree.Get(ctx, id)
	if err != nil {
		if errors.Is(err, bookmarks.ErrNodeNotFound) {
			return bookmarks.Node{}, errors.Wrapf(ErrBarNotFound, "id %q", id)
		}
		return bookmarks.Node{}, err
	}
	if !n.IsFolder() || n.ParentID != container {
		return bookmarks.Node{}, errors.Wrapf(ErrBarNotFound, "id %q is not a bar", id)
	}
	return n, nil
}

// CreateBar adds an empty bar at the end of the container.
func (e *Engine) CreateBar(ctx context.Context, title string) (Bar, error) {
	title, err := validTitle(title)
	if err != nil {
		return Bar{}, err
	}

	var bar Bar
	err = e.exclusive(func() error {
		container, err := e.containerID(ctx)
		if err != nil {
			return err
		}
		n, err := e.tree.Create(ctx, bookmarks.CreateDetails{ParentID: container, Title: title})
		if err != nil {
			return errors.Wrapf(err, "creating bar %q", title)
		}
		bar = Bar{ID: n.ID, Title: n.Title}
		return nil
	})
	return bar, err
}

// RenameBar changes a bar's title, keeping the stored active bar in step.
func (e *Engine) RenameBar(ctx context.Context, id, title string) error {
	title, err := validTitle(title)
	if err != nil {
		return err
	}

	return e.exclusive(func() error {
		if _, err := e.requireBar(ctx, id); err != nil {
			return err
		}
		if _, err := e.tree.Update(ctx, id, title); err != nil {
			return errors.Wrapf(err, "renaming bar %s", id)
		}

		var active Bar
		ok, err := e.state.Get(ctx, state.KeyActiveBar, &active)
		if err != nil {
			return errors.Wrap(err, "loading active bar")
		}
		if ok && active.ID == id {
			active.Title = title
			return errors.Wrap(e.state.Set(ctx, state.KeyActiveBar, active), "saving active bar")
		}
		return nil
	})
}

// RemoveBar deletes a bar and its bookmarks. The active bar cannot be
// removed; switch away from it first.
func (e *Engine) RemoveBar(ctx context.Context, id string) error {
	return e.exclusive(func() error {
		n, err := e.requireBar(ctx, id)
		if err != nil {
			return err
		}

		var active Bar
		if _, err := e.state.Get(ctx, state.KeyActiveBar, &active); err != nil {
			return errors.Wrap(err, "loading active bar")
		}
		if active.ID == id {
			return errors.Wrapf(ErrActiveBar, "%q", n.Title)
		}

		if err := e.tree.RemoveTree(ctx, id); err != nil {
			return errors.Wrapf(err, "removing bar %q", n.Title)
		}
		e.logger.Info("removed bar", "id", id, "title", n.Title)
		return nil
	})
}

// ReorderBars moves the bar at position from to position to, counting only
// bar folders, and returns the new order.
func (e *Engine) ReorderBars(ctx context.Context, from, to int) ([]Bar, error) {
	err := e.exclusive(func() error {
		nodes, err := e.barNodes(ctx)
		if err != nil {
			return err
		}
		if from < 0 || from >= len(nodes) || to < 0 || to >= len(nodes) {
			return errors.Newf("bar position out of range (have %d bars)", len(nodes))
		}
		if from == to {
			return nil
		}

		// Move indexes count positions before removal, so moving downward
		// targets the slot after the destination.
		index := nodes[to].Index
		if to > from {
			index++
		}
		_, err = e.tree.Move(ctx, nodes[from].ID, bookmarks.Destination{
			ParentID: nodes[from].ParentID,
			Index:    &index,
		})
		return errors.Wrapf(err, "moving bar %q", nodes[from].Title)
	})
	if err != nil {
		return nil, err
	}
	return e.Bars(ctx)
}
