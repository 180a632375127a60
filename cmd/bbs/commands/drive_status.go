package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

func init() {
	driveCmd.AddCommand(driveStatusCmd)
}

var driveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Drive connection and auto-backup state",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		return runDriveStatusWithWriter(cmd.Context(), a, cmd.OutOrStdout())
	}),
}

func runDriveStatusWithWriter(ctx context.Context, a *app.App, w io.Writer) error {
	auto, err := state.GetBool(ctx, a.State, state.KeyDriveAutoBackup)
	if err != nil {
		return err
	}
	connected := a.Drive.IsConnected(ctx)

	fmt.Fprintf(w, "Connected:   %s\n", onOff(connected))
	fmt.Fprintf(w, "Auto-backup: %s\n", onOff(auto))
	fmt.Fprintf(w, "Keeps:       %d backups\n", a.Drive.MaxBackups())
	if !connected {
		return nil
	}

	backups, err := a.Drive.List(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Stored:      %d backups\n", len(backups))
	if len(backups) > 0 {
		fmt.Fprintf(w, "Latest:      %s\n", backups[0].Name)
	}
	return nil
}
