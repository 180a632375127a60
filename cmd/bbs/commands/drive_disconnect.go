package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

func init() {
	driveCmd.AddCommand(driveDisconnectCmd)
}

var driveDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Revoke and forget Drive credentials",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		if err := a.Drive.Disconnect(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Disconnected from Google Drive")
		return nil
	}),
}
