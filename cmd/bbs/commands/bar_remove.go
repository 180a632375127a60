package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

func init() {
	barCmd.AddCommand(barRemoveCmd)
}

var barRemoveCmd = &cobra.Command{
	Use:   "remove <bar>",
	Short: "Remove a bar and its bookmarks",
	Long: `Remove a bar and every bookmark in it. The active bar cannot be
removed. A backup is saved first.`,
	Example: `  bbs bar remove Travel`,
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		return runBarRemoveWithWriter(cmd.Context(), a, cmd.OutOrStdout(), args[0])
	}),
}

func runBarRemoveWithWriter(ctx context.Context, a *app.App, w io.Writer, name string) error {
	bar, err := a.Engine.FindBar(ctx, name)
	if err != nil {
		return err
	}
	if _, err := a.Engine.BackupNow(ctx); err != nil {
		return err
	}
	if err := a.Engine.RemoveBar(ctx, bar.ID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Removed bar %q\n", bar.Title)
	return nil
}
