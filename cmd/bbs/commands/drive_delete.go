package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

func init() {
	driveCmd.AddCommand(driveDeleteCmd)
}

var driveDeleteCmd = &cobra.Command{
	Use:   "delete <file-id>",
	Short: "Delete a Drive backup",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		if err := a.Drive.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	}),
}
