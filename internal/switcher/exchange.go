package switcher

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	"github.com/trezero/bookmark-bar-switcher/internal/bookmarks"
	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

// ErrPartialMutation matches every *PartialMutationError.
var ErrPartialMutation = errors.New("bookmark tree left partially modified")

// PartialMutationError reports a tree step that failed after earlier steps
// had already changed the tree.
type PartialMutationError struct {
	Step string
	// Moved counts the nodes relocated by the failing step before it failed.
	Moved int
	Err   error
}

func (e *PartialMutationError) Error() string {
	return fmt.Sprintf("%s (after %d moves): %v", e.Step, e.Moved, e.Err)
}

func (e *PartialMutationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPartialMutation) true.
func (e *PartialMutationError) Is(target error) bool {
	return target == ErrPartialMutation
}

// SwitchTo makes the bar with folder id the active bar.
func (e *Engine) SwitchTo(ctx context.Context, id string) error {
	return e.ExchangeBars(ctx, id, "")
}

// ExchangeBars moves the bar in the primary slot back to its folder and the
// activated bar's bookmarks into the primary slot. An empty deactivatedID
// means the current active bar.
//
// Only folders directly inside the bar container are bars. A switch already
// in progress, an id naming no bar, or activating the bar that is already
// active all return nil without touching the tree.
func (e *Engine) ExchangeBars(ctx context.Context, activatedID, deactivatedID string) error {
	if !e.lock.TryAcquire() {
		e.logger.Warn("bar switch already in progress, skipping concurrent switch")
		return nil
	}
	defer e.lock.Release()

	var (
		deactivated Bar
		ok          = true
		err         error
	)
	if deactivatedID == "" {
		deactivated, err = e.ActiveBar(ctx)
	} else {
		deactivated, ok, err = e.resolveBar(ctx, deactivatedID)
	}
	if err != nil {
		return errors.Wrap(err, "resolving deactivated bar")
	}
	activated, found, err := e.resolveBar(ctx, activatedID)
	if err != nil {
		return errors.Wrap(err, "resolving activated bar")
	}
	if !ok || !found || activated.ID == deactivated.ID {
		e.logger.Debug("nothing to switch", "activated", activatedID, "deactivated", deactivated.ID)
		return nil
	}

	b, err := e.CreateBackup(ctx)
	if err != nil {
		return err
	}
	if err := e.backups.Save(ctx, b); err != nil {
		return err
	}
	e.autoUpload(ctx, b)

	primary := e.layout.PrimaryID
	if err := e.moveChildren(ctx, primary, deactivated.ID); err != nil {
		return err
	}
	if err := e.moveChildren(ctx, activated.ID, primary); err != nil {
		return err
	}
	if err := e.state.Set(ctx, state.KeyActiveBar, activated); err != nil {
		return &PartialMutationError{Step: "saving active bar", Err: err}
	}
	e.logger.Info("switched bar", "from", deactivated.Title, "to", activated.Title)

	e.verifyIntegrity(ctx, deactivated.ID)
	return nil
}

// autoUpload sends b in the background when remote auto-backup is enabled.
func (e *Engine) autoUpload(ctx context.Context, b backup.BookmarkBackup) {
	if e.remote == nil {
		return
	}
	on, err := state.GetBool(ctx, e.state, state.KeyDriveAutoBackup)
	if err != nil {
		e.logger.Warn("reading auto-backup flag", "error", err)
		return
	}
	if !on {
		return
	}

	ctx = context.WithoutCancel(ctx)
	e.uploads.Add(1)
	go func() {
		defer e.uploads.Done()
		if _, err := e.remote.Upload(ctx, b); err != nil {
			e.logger.Error("auto-upload to drive failed", "error", err)
		}
	}()
}

// moveChildren relocates every child of from, in order, to the end of to.
func (e *Engine) moveChildren(ctx context.Context, from, to string) error {
	children, err := e.tree.Children(ctx, from)
	if err != nil {
		return &PartialMutationError{Step: fmt.Sprintf("reading %s", from), Err: err}
	}
	for i, c := range children {
		if _, err := e.tree.Move(ctx, c.ID, bookmarks.Destination{ParentID: to}); err != nil {
			return &PartialMutationError{
				Step:  fmt.Sprintf("moving %s from %s to %s", c.ID, from, to),
				Moved: i,
				Err:   err,
			}
		}
	}
	return nil
}

// verifyIntegrity warns when both the primary slot and the bar that just
// left it are empty. It never fails.
func (e *Engine) verifyIntegrity(ctx context.Context, deactivatedID string) {
	primary, err := e.tree.Children(ctx, e.layout.PrimaryID)
	if err != nil {
		e.logger.Error("integrity check failed", "error", err)
		return
	}
	deactivated, err := e.tree.Children(ctx, deactivatedID)
	if err != nil {
		e.logger.Error("integrity check failed", "error", err)
		return
	}
	if len(primary) == 0 && len(deactivated) == 0 {
		e.logger.Warn("integrity check: both bars are empty after switch, this may indicate corruption",
			"deactivated", deactivatedID)
	}
}
