package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

func init() {
	driveCmd.AddCommand(driveConnectCmd)
}

var driveConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Authorize access to Google Drive",
	Long: `Authorize access to Google Drive. Prints a consent URL and reads the
authorisation code (or the full redirect URL) from the terminal.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		return runDriveConnectWithWriter(cmd.Context(), a, cmd.OutOrStdout())
	}),
}

func runDriveConnectWithWriter(ctx context.Context, a *app.App, w io.Writer) error {
	if _, err := a.Drive.Token(ctx, true); err != nil {
		return err
	}
	fmt.Fprintln(w, "Connected to Google Drive")
	return nil
}
