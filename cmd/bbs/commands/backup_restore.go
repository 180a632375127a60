package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
	"github.com/trezero/bookmark-bar-switcher/internal/backup"
	"github.com/trezero/bookmark-bar-switcher/internal/errors"
	"github.com/trezero/bookmark-bar-switcher/pkg/fileutil"
)

var (
	backupRestoreFile   string
	backupRestoreFormat string
)

func init() {
	backupRestoreCmd.Flags().StringVarP(&backupRestoreFile, "file", "f", "",
		"restore from an exported file instead of local history")
	backupRestoreCmd.Flags().StringVar(&backupRestoreFormat, "format", "",
		"format of --file: json, yaml, toml (default: from extension)")
	backupCmd.AddCommand(backupRestoreCmd)
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [index]",
	Short: "Restore all bars from a backup",
	Long: `Replace every bar and the bookmarks bar with the contents of a backup.

The backup is chosen by its index in 'bbs backup list' (0, the most recent,
by default) or read from a file written by 'bbs backup export'.`,
	Example: `  # Restore the most recent backup
  bbs backup restore

  # Restore an older one
  bbs backup restore 2

  # Restore an exported file
  bbs backup restore --file bars.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		b, err := loadBackup(cmd.Context(), a, args)
		if err != nil {
			return err
		}
		return runBackupRestoreWithWriter(cmd.Context(), a, cmd.OutOrStdout(), b)
	}),
}

func runBackupRestoreWithWriter(ctx context.Context, a *app.App, w io.Writer, b backup.BookmarkBackup) error {
	if err := a.Engine.RestoreFromBackup(ctx, b); err != nil {
		return err
	}
	bars, links, _ := b.Stats()
	fmt.Fprintf(w, "Restored %d bars (%d links) from %s\n", bars, links, b.Time().Local().Format("2006-01-02 15:04:05"))
	return nil
}

func loadBackup(ctx context.Context, a *app.App, args []string) (backup.BookmarkBackup, error) {
	if backupRestoreFile == "" {
		return historyEntry(ctx, a, args)
	}
	if len(args) > 0 {
		return backup.BookmarkBackup{}, errors.NewUserError(
			errors.New("index and --file are mutually exclusive"), "Pass either an index or --file")
	}

	format := backup.FormatFromPath(backupRestoreFile)
	if backupRestoreFormat != "" {
		f, err := backup.ParseFormat(backupRestoreFormat)
		if err != nil {
			return backup.BookmarkBackup{}, errors.NewUserError(err, "Use --format json, yaml or toml")
		}
		format = f
	}

	f, err := os.Open(backupRestoreFile)
	if err != nil {
		return backup.BookmarkBackup{}, errors.NewUserError(err, "Check the --file path")
	}
	defer f.Close()
	return backup.Import(io.LimitReader(f, fileutil.MaxFileSize), format)
}
