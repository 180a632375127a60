package commands

import (
	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

func init() {
	driveCmd.AddCommand(driveRestoreCmd)
}

var driveRestoreCmd = &cobra.Command{
	Use:   "restore <file-id>",
	Short: "Restore all bars from a Drive backup",
	Example: `  bbs drive list
  bbs drive restore 1a2b3c`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		ctx := cmd.Context()
		b, err := a.Drive.Download(ctx, args[0])
		if err != nil {
			return err
		}
		return runBackupRestoreWithWriter(ctx, a, cmd.OutOrStdout(), b)
	}),
}
