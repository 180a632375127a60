package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	"github.com/trezero/bookmark-bar-switcher/internal/errors"
)

func init() {
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage local bookmark backups",
	Long: `A backup captures every bar plus the bookmarks bar. One is taken before
every switch; the most recent ones are kept in local history.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// historyEntry returns the history entry named by args[0], or the newest.
func historyEntry(ctx context.Context, a *app.App, args []string) (backup.BookmarkBackup, error) {
	index := 0
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return backup.BookmarkBackup{}, errors.NewUserError(
				errors.Wrap(errors.ErrInvalidArgument, args[0]), "Index must be a number from: bbs backup list")
		}
		index = n
	}
	b, err := a.Backups.At(ctx, index)
	if errors.Is(err, backup.ErrIndexOutOfRange) {
		return b, errors.Mark(err, errors.ErrNotFound)
	}
	return b, err
}
