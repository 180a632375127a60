package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
	"github.com/trezero/bookmark-bar-switcher/internal/errors"
	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

func init() {
	driveCmd.AddCommand(driveAutoCmd)
}

var driveAutoCmd = &cobra.Command{
	Use:       "auto [on|off]",
	Short:     "Upload a backup to Drive on every switch",
	Example:   `  bbs drive auto on`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		return runDriveAutoWithWriter(cmd.Context(), a, cmd.OutOrStdout(), args)
	}),
}

func runDriveAutoWithWriter(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if len(args) == 0 {
		on, err := state.GetBool(ctx, a.State, state.KeyDriveAutoBackup)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Auto-backup: %s\n", onOff(on))
		return nil
	}

	on := args[0] == "on"
	if on && !a.Drive.IsConnected(ctx) {
		return errors.NewUserError(errors.New("not connected to Google Drive"), "Run: bbs drive connect")
	}
	if err := a.State.Set(ctx, state.KeyDriveAutoBackup, on); err != nil {
		return err
	}
	fmt.Fprintf(w, "Auto-backup: %s\n", onOff(on))
	return nil
}
