package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

func init() {
	barCmd.AddCommand(barRenameCmd)
}

var barRenameCmd = &cobra.Command{
	Use:     "rename <bar> <title>",
	Short:   "Rename a bar",
	Example: `  bbs bar rename Travel Holidays`,
	Args:    cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		return runBarRenameWithWriter(cmd.Context(), a, cmd.OutOrStdout(), args[0], args[1])
	}),
}

func runBarRenameWithWriter(ctx context.Context, a *app.App, w io.Writer, name, title string) error {
	bar, err := a.Engine.FindBar(ctx, name)
	if err != nil {
		return err
	}
	if err := a.Engine.RenameBar(ctx, bar.ID, title); err != nil {
		return err
	}
	fmt.Fprintf(w, "Renamed %q to %q\n", bar.Title, title)
	return nil
}
