package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/internal/app"
)

func init() {
	barCmd.AddCommand(barCreateCmd)
}

var barCreateCmd = &cobra.Command{
	Use:     "create <title>",
	Short:   "Create an empty bar",
	Example: `  bbs bar create Travel`,
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		return runBarCreateWithWriter(cmd.Context(), a, cmd.OutOrStdout(), args[0])
	}),
}

func runBarCreateWithWriter(ctx context.Context, a *app.App, w io.Writer, title string) error {
	bar, err := a.Engine.CreateBar(ctx, title)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Created bar %q (%s)\n", bar.Title, bar.ID)
	return nil
}
