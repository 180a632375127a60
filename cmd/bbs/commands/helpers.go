package commands

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/trezero/bookmark-bar-switcher/internal/auth"
	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	"github.com/trezero/bookmark-bar-switcher/internal/drive"
	"github.com/trezero/bookmark-bar-switcher/internal/errors"
	"github.com/trezero/bookmark-bar-switcher/internal/lock"
	"github.com/trezero/bookmark-bar-switcher/internal/snapshot"
	"github.com/trezero/bookmark-bar-switcher/internal/switcher"
)

// Output styles. fatih/color disables them when stdout is not a terminal
// or NO_COLOR is set.
var (
	styleHeader = color.New(color.FgCyan, color.Bold).SprintFunc()
	styleActive = color.New(color.FgGreen, color.Bold).SprintFunc()
	styleMuted  = color.New(color.FgHiBlack).SprintFunc()
	styleWarn   = color.New(color.FgYellow).SprintFunc()
)

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// classify turns domain errors into ExitErrors with a suggestion for the
// user. Other errors pass through unchanged.
func classify(err error) error {
	var exitErr *errors.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return err
	case errors.Is(err, switcher.ErrBarNotFound):
		return errors.NewUserError(err, "Run: bbs bar list")
	case errors.Is(err, switcher.ErrInvalidTitle):
		return errors.NewUserError(err, "Bar titles must be non-empty and not "+strconv.Quote(backup.PrimaryBarTitle))
	case errors.Is(err, switcher.ErrActiveBar):
		return errors.NewUserError(err, "Switch to another bar first: bbs bar switch")
	case errors.Is(err, lock.ErrContention):
		return errors.NewUserError(err, "Another bar operation is running; try again")
	case errors.Is(err, errors.ErrInvalidConfig):
		return errors.NewConfigError(err)
	case errors.Is(err, errors.ErrNotFound):
		return errors.NewUserError(err, "Run: bbs backup list")
	case errors.Is(err, backup.ErrNoBackupsFound):
		return errors.NewUserError(err, "Create one with: bbs backup create")
	case errors.Is(err, backup.ErrInvalidBackup), errors.Is(err, snapshot.ErrCodec):
		return errors.NewUserError(err, "The backup is malformed and was not restored")
	case errors.Is(err, auth.ErrNotAuthenticated):
		return errors.NewUserError(err, "Run: bbs drive connect")
	case errors.Is(err, switcher.ErrPartialMutation):
		return errors.NewSystemError(err, "The bookmark tree was left partially switched; restore with: bbs backup restore")
	case errors.Is(err, drive.ErrRequestFailed):
		return errors.NewSystemError(err, "Check your connection and run: bbs drive status")
	}
	return err
}
