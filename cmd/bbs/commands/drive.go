package commands

import "github.com/spf13/cobra"

func init() {
	rootCmd.AddCommand(driveCmd)
}

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Back up bars to Google Drive",
	Long: `Store backups in the application data folder of your Google Drive.

Authentication uses drive.token (BBS_DRIVE_TOKEN) when set, otherwise the
OAuth flow started by 'bbs drive connect'. Only the most recent
drive.max_backups files are kept.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func onOff(b bool) string {
	if b {
		return styleActive("on")
	}
	return styleMuted("off")
}
